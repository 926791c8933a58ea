package ahdl_test

import (
	"testing"

	"github.com/mixsig/ahdl"
	"github.com/pkg/errors"
)

var testParams = ahdl.MustParamClass("TestParams",
	ahdl.Param{Name: "n", Kind: ahdl.KindInt, Default: ahdl.IntV(1)},
)

func Test_generator_registration(t *testing.T) {
	fn := func(p ahdl.Params) (*ahdl.Module, error) {
		return ahdl.NewModule(""), nil
	}
	td := []struct {
		name string
		reg  func() (*ahdl.Generator, error)
		ok   bool
	}{
		{"valid", func() (*ahdl.Generator, error) {
			return ahdl.NewGenerator("g", testParams, fn)
		}, true},
		{"valid with context", func() (*ahdl.Generator, error) {
			return ahdl.NewGeneratorCtx("g", testParams, func(p ahdl.Params, ctx *ahdl.Context) (*ahdl.Module, error) {
				return ahdl.NewModule(""), nil
			})
		}, true},
		{"nil function", func() (*ahdl.Generator, error) {
			return ahdl.NewGenerator("g", testParams, nil)
		}, false},
		{"nil context function", func() (*ahdl.Generator, error) {
			return ahdl.NewGeneratorCtx("g", testParams, nil)
		}, false},
		{"empty name", func() (*ahdl.Generator, error) {
			return ahdl.NewGenerator("", testParams, fn)
		}, false},
		{"nil param class", func() (*ahdl.Generator, error) {
			return ahdl.NewGenerator("g", nil, fn)
		}, false},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			g, err := d.reg()
			if d.ok {
				if err != nil {
					t.Fatal(err)
				}
				if g.Name() != "g" {
					t.Errorf("expected name g, got %q", g.Name())
				}
				return
			}
			if err == nil {
				t.Fatal("expected registration to fail")
			}
			if _, ok := errors.Cause(err).(*ahdl.SignatureError); !ok {
				t.Errorf("expected *SignatureError, got %T: %v", err, err)
			}
		})
	}
}

func Test_generator_bare_call(t *testing.T) {
	g := ahdl.MustGenerator("g", testParams, func(p ahdl.Params) (*ahdl.Module, error) {
		return ahdl.NewModule(""), nil
	})
	_, err := g.Call(testParams.MustNew(nil))
	if err == nil {
		t.Fatal("bare generator call must fail")
	}
	if _, ok := errors.Cause(err).(*ahdl.UsageError); !ok {
		t.Errorf("expected *UsageError, got %T: %v", err, err)
	}
}

func Test_generator_bind(t *testing.T) {
	g := ahdl.MustGenerator("g", testParams, func(p ahdl.Params) (*ahdl.Module, error) {
		return ahdl.NewModule(""), nil
	})
	p := testParams.MustNew(ahdl.V{"n": 2})
	call, err := g.Bind(p)
	if err != nil {
		t.Fatal(err)
	}
	if call.Generator() != g || !call.Params().Equal(p) {
		t.Error("bind did not preserve generator and params")
	}

	other := ahdl.MustParamClass("Other",
		ahdl.Param{Name: "n", Kind: ahdl.KindInt},
	)
	_, err = g.Bind(other.MustNew(ahdl.V{"n": 2}))
	if err == nil {
		t.Fatal("bind with a foreign param class must fail")
	}
	if _, ok := errors.Cause(err).(*ahdl.TypeMismatchError); !ok {
		t.Errorf("expected *TypeMismatchError, got %T: %v", err, err)
	}

	_, err = g.Bind(ahdl.Params{})
	if err == nil {
		t.Fatal("bind with zero params must fail")
	}
}
