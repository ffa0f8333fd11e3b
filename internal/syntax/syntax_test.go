package syntax

import (
	"strings"
	"testing"

	"weave/internal/model"
	"weave/internal/types"
)

func TestPrintTypeWithMembers(t *testing.T) {
	file := &File{
		Header: []string{"// <auto-generated/>"},
		Members: []*Member{{
			Kind: MemberNamespace,
			Name: "App",
			Members: []*Member{{
				Kind:      MemberType,
				Modifiers: []string{"public"},
				Keyword:   "class",
				Name:      "T",
				Bases:     []string{"App.B"},
				Members: []*Member{
					{Kind: MemberField, Modifiers: []string{"private"}, Type: "int", Name: "_x", Value: "1"},
					{
						Kind: MemberConstructor, Modifiers: []string{"public"}, Name: "T",
						Params:  []Param{{Type: "int", Name: "x", Default: "0"}},
						Init:    &Initializer{Keyword: "base", Args: []string{"x"}},
						Body:    []string{"_x = x;"},
						HasBody: true,
					},
					{
						Kind: MemberProperty, Modifiers: []string{"public"}, Type: "string", Name: "Name",
						Accessors: []Accessor{{Keyword: "get", Auto: true}, {Keyword: "init", Auto: true}},
					},
				},
			}},
		}},
	}
	want := strings.Join([]string{
		"// <auto-generated/>",
		"",
		"namespace App",
		"{",
		"    public class T : App.B",
		"    {",
		"        private int _x = 1;",
		"",
		"        public T(int x = 0) : base(x)",
		"        {",
		"            _x = x;",
		"        }",
		"",
		"        public string Name { get; init; }",
		"    }",
		"}",
		"",
	}, "\n")
	if got := Print(file); got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintSpecialMembers(t *testing.T) {
	tests := []struct {
		name string
		m    *Member
		want string
	}{
		{"finalizer", &Member{Kind: MemberFinalizer, Name: "T", HasBody: true}, "~T()\n{\n}\n"},
		{"operator", &Member{
			Kind: MemberOperator, Modifiers: []string{"public", "static"}, Type: "T", Name: "+",
			Params: []Param{{Type: "T", Name: "a"}, {Type: "T", Name: "b"}}, Body: []string{"return a;"}, HasBody: true,
		}, "public static T operator +(T a, T b)\n{\n    return a;\n}\n"},
		{"conversion", &Member{
			Kind: MemberConversion, Modifiers: []string{"public", "static"}, Type: "int", Name: "implicit",
			Params: []Param{{Type: "T", Name: "t"}}, HasBody: true,
		}, "public static implicit operator int(T t)\n{\n}\n"},
		{"event field", &Member{Kind: MemberEventField, Modifiers: []string{"public"}, Type: "EventHandler", Name: "Changed"},
			"public event EventHandler Changed;\n"},
		{"abstract method", &Member{Kind: MemberMethod, Modifiers: []string{"public", "abstract"}, Type: "void", Name: "Run"},
			"public abstract void Run();\n"},
		{"templated property", &Member{
			Kind: MemberProperty, Modifiers: []string{"public"}, Type: "int", Name: "P",
			Accessors: []Accessor{
				{Keyword: "get", Body: []string{"return _p;"}},
				{Keyword: "set", Modifiers: []string{"private"}, Body: []string{"_p = value;"}},
			},
		}, "public int P\n{\n    get\n    {\n        return _p;\n    }\n    private set\n    {\n        _p = value;\n    }\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrintMember(tt.m); got != tt.want {
				t.Fatalf("got:\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestGeneratorTypeSyntax(t *testing.T) {
	ti := types.NewInterner()
	str := ti.NullableOf(ti.Builtins().String)
	num := ti.NullableOf(ti.Builtins().Int)

	oblivious := Generator{Types: ti, Mode: NullabilityOblivious}
	aware := Generator{Types: ti, Mode: NullabilityAware}
	if got := oblivious.TypeSyntax(str); got != "string" {
		t.Fatalf("oblivious string? = %q", got)
	}
	if got := oblivious.TypeSyntax(num); got != "int?" {
		t.Fatalf("nullable value types keep '?', got %q", got)
	}
	if got := aware.TypeSyntax(ti.ArrayOf(str)); got != "string?[]" {
		t.Fatalf("aware string?[] = %q", got)
	}
	if got := aware.TypeSyntax(types.NoTypeID); got != "void" {
		t.Fatalf("NoTypeID = %q", got)
	}
}

func TestGeneratorModifiers(t *testing.T) {
	g := Generator{Types: types.NewInterner()}
	d := &model.Decl{Kind: model.DeclMethod, Access: model.AccessPublic, Flags: model.FlagStatic | model.FlagNew}
	if got := strings.Join(g.Modifiers(d), " "); got != "public static new" {
		t.Fatalf("modifiers = %q", got)
	}
	d = &model.Decl{Kind: model.DeclMethod, Access: model.AccessProtected, Flags: model.FlagOverride | model.FlagVirtual | model.FlagSealed}
	if got := strings.Join(g.Modifiers(d), " "); got != "protected sealed override" {
		t.Fatalf("modifiers = %q", got)
	}
	d = &model.Decl{Kind: model.DeclMethod, Access: model.AccessPublic, ExplicitInterface: 4}
	if got := g.Modifiers(d); len(got) != 0 {
		t.Fatalf("explicit implementations have no modifiers, got %v", got)
	}
}
