package project

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/source"
	"weave/internal/types"
)

// ParamSpec is one parameter of a method, constructor or indexer.
type ParamSpec struct {
	Name    string `toml:"name"`
	Type    string `toml:"type"`
	Default string `toml:"default"`
	Params  bool   `toml:"params"`
}

// MemberSpec describes one member; which keys apply depends on the table it
// is declared in.
type MemberSpec struct {
	Name        string      `toml:"name"`
	Kind        string      `toml:"kind"` // methods: ordinary|operator|conversion|finalizer
	Type        string      `toml:"type"` // member type or method return type
	Access      string      `toml:"access"`
	Modifiers   []string    `toml:"modifiers"`
	Params      []ParamSpec `toml:"params"`
	Body        []string    `toml:"body"`
	Init        string      `toml:"init"`
	Accessors   []string    `toml:"accessors"`
	Auto        bool        `toml:"auto"`
	FieldLike   bool        `toml:"field_like"`
	Initializer string      `toml:"initializer"` // constructors: this|base
	Args        []string    `toml:"args"`
}

// TypeSpec describes a type by its qualified name. Namespaces are implied by
// the name; a prefix naming another declared type makes this one nested.
type TypeSpec struct {
	Name         string       `toml:"name"`
	Kind         string       `toml:"kind"`
	Access       string       `toml:"access"`
	Modifiers    []string     `toml:"modifiers"`
	Base         string       `toml:"base"`
	Interfaces   []string     `toml:"interfaces"`
	Fields       []MemberSpec `toml:"field"`
	Constructors []MemberSpec `toml:"constructor"`
	Properties   []MemberSpec `toml:"property"`
	Events       []MemberSpec `toml:"event"`
	Indexers     []MemberSpec `toml:"indexer"`
	Methods      []MemberSpec `toml:"method"`
}

// ModelFile is the decoded form of a model file.
type ModelFile struct {
	Types []TypeSpec `toml:"type"`
}

// LoadModel reads a model file into a sealed base snapshot. Malformed
// entries are reported to r and skipped; the returned error covers I/O and
// TOML syntax only.
func LoadModel(fs *source.FileSet, path string, r diag.Reporter) (*model.Snapshot, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	return buildModel(fs, id, r)
}

// ParseModel is LoadModel for in-memory content.
func ParseModel(fs *source.FileSet, name string, content []byte, r diag.Reporter) (*model.Snapshot, error) {
	return buildModel(fs, fs.AddSource(name, content), r)
}

func buildModel(fs *source.FileSet, id source.FileID, r diag.Reporter) (*model.Snapshot, error) {
	file := fs.Get(id)
	var mf ModelFile
	if _, err := toml.Decode(string(file.Content), &mf); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", file.Path, err)
	}
	l := &modelLoader{
		comp:       model.NewCompilation(model.Hints{Decls: uint(len(mf.Types) * 8)}, nil, fs),
		reporter:   r,
		loc:        &locator{file: file},
		namespaces: make(map[string]model.Ref),
		types:      make(map[string]model.Ref),
	}
	l.load(mf.Types)
	return l.comp.Seal(), nil
}

type modelLoader struct {
	comp       *model.Compilation
	reporter   diag.Reporter
	loc        *locator
	namespaces map[string]model.Ref
	types      map[string]model.Ref
}

type pendingType struct {
	spec *TypeSpec
	ref  model.Ref
	span source.Span
}

func (l *modelLoader) load(specs []TypeSpec) {
	spans := make([]source.Span, len(specs))
	for i := range specs {
		spans[i] = l.loc.quoted(specs[i].Name)
	}
	// внешние типы объявляются раньше вложенных
	order := make([]int, len(specs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return strings.Count(specs[order[a]].Name, ".") < strings.Count(specs[order[b]].Name, ".")
	})

	pending := make([]pendingType, 0, len(specs))
	for _, i := range order {
		spec := &specs[i]
		if ref, ok := l.declareType(spec, spans[i]); ok {
			pending = append(pending, pendingType{spec: spec, ref: ref, span: spans[i]})
		}
	}
	// члены добавляются в порядке файла
	sort.SliceStable(pending, func(a, b int) bool { return pending[a].span.Start < pending[b].span.Start })
	for _, p := range pending {
		l.declareBases(p)
		l.declareMembers(p)
	}
}

func (l *modelLoader) errorf(code diag.Code, span source.Span, args ...any) {
	diag.Errorf(l.reporter, code, span, args...).Emit()
}

func (l *modelLoader) invalid(span source.Span, format string, args ...any) {
	diag.ReportError(l.reporter, diag.PrjInvalidModel, span, fmt.Sprintf(format, args...)).Emit()
}

func (l *modelLoader) declareType(spec *TypeSpec, span source.Span) (model.Ref, bool) {
	segs, err := SplitQualified(spec.Name)
	if err != nil {
		l.invalid(span, "invalid type name %q", spec.Name)
		return model.NoRef, false
	}
	if _, dup := l.types[spec.Name]; dup {
		l.errorf(diag.PrjDuplicate, span, "type", spec.Name)
		return model.NoRef, false
	}
	kind, ok := parseTypeKind(spec.Kind)
	if !ok {
		l.invalid(span, "type %s: unknown kind %q", spec.Name, spec.Kind)
		return model.NoRef, false
	}
	access, flags, ok := l.modifiers(span, spec.Name, spec.Access, spec.Modifiers)
	if !ok {
		return model.NoRef, false
	}
	parent := l.container(segs[:len(segs)-1])
	ref := l.comp.AddType(parent, segs[len(segs)-1], kind, access, flags)
	l.comp.SetSpan(ref, span)
	l.types[spec.Name] = ref
	return ref, true
}

// container returns the declared type or namespace named by segs, creating
// namespaces on demand.
func (l *modelLoader) container(segs []string) model.Ref {
	parent := model.NoRef
	for i := range segs {
		name := strings.Join(segs[:i+1], ".")
		if ref, ok := l.types[name]; ok {
			parent = ref
			continue
		}
		ref, ok := l.namespaces[name]
		if !ok {
			ref = l.comp.AddNamespace(parent, segs[i])
			l.namespaces[name] = ref
		}
		parent = ref
	}
	return parent
}

func (l *modelLoader) declareBases(p pendingType) {
	if base := strings.TrimSpace(p.spec.Base); base != "" {
		if ref, ok := l.types[base]; ok {
			l.comp.SetBase(p.ref, ref)
		} else {
			l.comp.Decl(p.ref).BaseName = base
		}
	}
	for _, iface := range p.spec.Interfaces {
		ref, ok := l.types[strings.TrimSpace(iface)]
		if !ok {
			l.errorf(diag.PrjUnknownType, p.span, iface)
			continue
		}
		l.comp.AddInterface(p.ref, ref)
	}
}

func (l *modelLoader) declareMembers(p pendingType) {
	for i := range p.spec.Fields {
		l.field(p, &p.spec.Fields[i])
	}
	for i := range p.spec.Constructors {
		l.constructor(p, &p.spec.Constructors[i])
	}
	for i := range p.spec.Properties {
		l.property(p, &p.spec.Properties[i])
	}
	for i := range p.spec.Events {
		l.event(p, &p.spec.Events[i])
	}
	for i := range p.spec.Indexers {
		l.indexer(p, &p.spec.Indexers[i])
	}
	for i := range p.spec.Methods {
		l.method(p, &p.spec.Methods[i])
	}
}

// head validates the parts every member shares.
func (l *modelLoader) head(p pendingType, m *MemberSpec, what string, named bool) (source.Span, model.Accessibility, model.Flags, bool) {
	span := p.span
	if named {
		span = l.loc.quotedAfter(m.Name, p.span)
		if !IsValidIdent(m.Name) {
			l.invalid(span, "%s of %s: invalid name %q", what, p.spec.Name, m.Name)
			return span, 0, 0, false
		}
	}
	access, flags, ok := l.modifiers(span, p.spec.Name+"."+m.Name, m.Access, m.Modifiers)
	return span, access, flags, ok
}

func (l *modelLoader) typeOf(span source.Span, text string) (types.TypeID, bool) {
	id, err := l.comp.Types.Parse(text)
	if err != nil {
		l.errorf(diag.PrjUnknownType, span, text)
		return types.NoTypeID, false
	}
	return id, true
}

func (l *modelLoader) params(span source.Span, owner model.Ref, specs []ParamSpec) bool {
	for _, ps := range specs {
		typ, ok := l.typeOf(span, ps.Type)
		if !ok {
			return false
		}
		ref := l.comp.AddParameter(owner, ps.Name, typ, ps.Default)
		if ps.Params {
			l.comp.Decl(ref).Flags |= model.FlagParams
		}
	}
	return true
}

func (l *modelLoader) field(p pendingType, m *MemberSpec) {
	span, access, flags, ok := l.head(p, m, "field", true)
	if !ok {
		return
	}
	typ, ok := l.typeOf(span, m.Type)
	if !ok {
		return
	}
	ref := l.comp.AddField(p.ref, m.Name, typ, access, flags)
	d := l.comp.Decl(ref)
	d.Span = span
	d.Value = m.Init
	if flags&(model.FlagReadOnly|model.FlagConst) != 0 {
		d.Writeability = model.WriteConstructorOnly
	}
}

func (l *modelLoader) constructor(p pendingType, m *MemberSpec) {
	span, access, flags, ok := l.head(p, m, "constructor", false)
	if !ok {
		return
	}
	ref := l.comp.AddConstructor(p.ref, access, flags)
	l.comp.SetSpan(ref, span)
	if !l.params(span, ref, m.Params) {
		return
	}
	switch strings.TrimSpace(m.Initializer) {
	case "":
	case "this":
		l.comp.SetInitializer(ref, model.InitThis, m.Args...)
	case "base":
		l.comp.SetInitializer(ref, model.InitBase, m.Args...)
	default:
		l.invalid(span, "constructor of %s: unknown initializer %q (expected: this|base)", p.spec.Name, m.Initializer)
	}
	if len(m.Body) > 0 {
		l.comp.SetBody(ref, m.Body...)
	}
}

func (l *modelLoader) property(p pendingType, m *MemberSpec) {
	span, access, flags, ok := l.head(p, m, "property", true)
	if !ok {
		return
	}
	typ, ok := l.typeOf(span, m.Type)
	if !ok {
		return
	}
	acc, ok := l.accessors(span, p.spec.Name+"."+m.Name, m.Accessors, model.AccessorGet|model.AccessorSet)
	if !ok {
		return
	}
	ref := l.comp.AddProperty(p.ref, m.Name, typ, access, flags, acc, m.Auto || len(m.Body) == 0)
	d := l.comp.Decl(ref)
	d.Span = span
	d.Value = m.Init
	d.Body = m.Body
}

func (l *modelLoader) event(p pendingType, m *MemberSpec) {
	span, access, flags, ok := l.head(p, m, "event", true)
	if !ok {
		return
	}
	typ, ok := l.typeOf(span, m.Type)
	if !ok {
		return
	}
	ref := l.comp.AddEvent(p.ref, m.Name, typ, access, flags, m.FieldLike)
	l.comp.SetSpan(ref, span)
}

func (l *modelLoader) indexer(p pendingType, m *MemberSpec) {
	span, access, flags, ok := l.head(p, m, "indexer", false)
	if !ok {
		return
	}
	typ, ok := l.typeOf(span, m.Type)
	if !ok {
		return
	}
	if len(m.Params) == 0 {
		l.invalid(span, "indexer of %s: at least one parameter is required", p.spec.Name)
		return
	}
	acc, ok := l.accessors(span, p.spec.Name+"[]", m.Accessors, model.AccessorGet)
	if !ok {
		return
	}
	ref := l.comp.AddIndexer(p.ref, typ, access, flags, acc)
	l.comp.SetSpan(ref, span)
	l.params(span, ref, m.Params)
}

func (l *modelLoader) method(p pendingType, m *MemberSpec) {
	kind, ok := parseMethodKind(m.Kind)
	named := kind == model.MethodOrdinary
	span, access, flags, valid := l.head(p, m, "method", named)
	if !valid {
		return
	}
	if !ok {
		l.invalid(span, "method %s.%s: unknown kind %q", p.spec.Name, m.Name, m.Kind)
		return
	}
	ret := l.comp.Types.Builtins().Void
	if strings.TrimSpace(m.Type) != "" {
		if ret, ok = l.typeOf(span, m.Type); !ok {
			return
		}
	}
	name := m.Name
	switch kind {
	case model.MethodFinalizer:
		name = model.FinalizerName
	case model.MethodOperator, model.MethodConversion:
		if strings.TrimSpace(name) == "" {
			l.invalid(span, "operator of %s: missing token", p.spec.Name)
			return
		}
		flags |= model.FlagStatic
	}
	ref := l.comp.AddMethod(p.ref, name, ret, access, flags)
	d := l.comp.Decl(ref)
	d.MethodKind = kind
	d.Span = span
	if !l.params(span, ref, m.Params) {
		return
	}
	if len(m.Body) > 0 {
		l.comp.SetBody(ref, m.Body...)
	}
}

func (l *modelLoader) modifiers(span source.Span, owner, accessText string, mods []string) (model.Accessibility, model.Flags, bool) {
	access, ok := model.ParseAccessibility(strings.TrimSpace(accessText))
	if !ok {
		l.invalid(span, "%s: unknown accessibility %q", owner, accessText)
		return 0, 0, false
	}
	var flags model.Flags
	for _, m := range mods {
		f, ok := model.ParseFlag(strings.TrimSpace(m))
		if !ok || f == model.FlagImplicit {
			l.invalid(span, "%s: unknown modifier %q", owner, m)
			return 0, 0, false
		}
		flags |= f
	}
	return access, flags, true
}

func (l *modelLoader) accessors(span source.Span, owner string, names []string, def model.Accessors) (model.Accessors, bool) {
	if len(names) == 0 {
		return def, true
	}
	var acc model.Accessors
	for _, n := range names {
		switch strings.TrimSpace(n) {
		case "get":
			acc |= model.AccessorGet
		case "set":
			acc |= model.AccessorSet
		case "init":
			acc |= model.AccessorInit
		default:
			l.invalid(span, "%s: unknown accessor %q", owner, n)
			return 0, false
		}
	}
	return acc, true
}

func parseTypeKind(s string) (model.TypeKind, bool) {
	switch strings.TrimSpace(s) {
	case "", "class":
		return model.TypeClass, true
	case "struct":
		return model.TypeStruct, true
	case "interface":
		return model.TypeInterface, true
	case "record":
		return model.TypeRecord, true
	}
	return model.TypeClass, false
}

func parseMethodKind(s string) (model.MethodKind, bool) {
	switch strings.TrimSpace(s) {
	case "", "ordinary", "method":
		return model.MethodOrdinary, true
	case "operator":
		return model.MethodOperator, true
	case "conversion":
		return model.MethodConversion, true
	case "finalizer":
		return model.MethodFinalizer, true
	}
	return model.MethodOrdinary, false
}

// locator finds declaration sites in the raw file so diagnostics can point
// at the name of the offending entry.
type locator struct {
	file *source.File
	from uint32
}

// quoted finds the next occurrence of "name" after the previous match.
func (l *locator) quoted(name string) source.Span {
	sp, ok := l.file.Find(`"`+name+`"`, l.from)
	if !ok {
		return source.Span{File: l.file.ID}
	}
	l.from = sp.End
	return sp
}

// quotedAfter finds "name" after anchor without moving the cursor.
func (l *locator) quotedAfter(name string, anchor source.Span) source.Span {
	if sp, ok := l.file.Find(`"`+name+`"`, anchor.End); ok {
		return sp
	}
	return anchor
}

// ReadFile returns the raw bytes of path; used for cache keys.
func ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
