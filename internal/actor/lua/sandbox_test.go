package lua

import (
	"context"
	"strings"
	"testing"

	glua "github.com/yuin/gopher-lua"
)

func TestSandbox_RemovesDangerousFuncs(t *testing.T) {
	state := NewState()
	defer state.Close()

	for _, name := range dangerousFuncs {
		if state.HasFunction(name) {
			t.Errorf("%s should be removed", name)
		}
	}
}

func TestSandbox_NoUnsafeLibraries(t *testing.T) {
	state := NewState()
	defer state.Close()

	for _, name := range []string{"io", "os", "debug"} {
		var v glua.LValue
		_ = state.Do(context.Background(), func(_ context.Context, L *glua.LState) error {
			v = L.GetGlobal(name)
			return nil
		})
		if v != glua.LNil {
			t.Errorf("global %s should not exist, got %s", name, v.Type())
		}
	}
}

func TestSandbox_Require(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(context.Background(), `local s = require("string"); assert(s.upper("a") == "A")`); err != nil {
		t.Errorf("require(string) failed: %v", err)
	}

	for _, mod := range []string{"io", "os", "debug", "socket", "./evil"} {
		err := state.DoString(context.Background(), `require("`+mod+`")`)
		if err == nil {
			t.Errorf("require(%q) should fail", mod)
			continue
		}
		if !strings.Contains(err.Error(), "not available") {
			t.Errorf("require(%q) error = %v", mod, err)
		}
	}
}

func TestSandbox_AllowModule(t *testing.T) {
	state := NewState()
	defer state.Close()

	_ = state.Do(context.Background(), func(_ context.Context, L *glua.LState) error {
		L.PreloadModule("extra", func(L *glua.LState) int {
			mod := L.NewTable()
			L.SetField(mod, "answer", glua.LNumber(42))
			L.Push(mod)
			return 1
		})
		return nil
	})

	if err := state.DoString(context.Background(), `require("extra")`); err == nil {
		t.Fatal("require(extra) should fail before AllowModule")
	}

	state.Sandbox().AllowModule("extra")
	if err := state.DoString(context.Background(), `assert(require("extra").answer == 42)`); err != nil {
		t.Errorf("require(extra) failed after AllowModule: %v", err)
	}
}
