package builder

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"weave/internal/model"
	"weave/internal/types"
)

// RefAllocator hands out refs for new declarations; *model.Delta implements it.
type RefAllocator interface {
	NewRef() model.Ref
}

// Factory creates builders on behalf of one advice.
type Factory struct {
	Types  *types.Interner
	Alloc  RefAllocator
	Aspect string
	Layer  int
}

func (f *Factory) header(kind model.DeclKind, parent model.Ref, name string) Header {
	return Header{
		Ref:           f.Alloc.NewRef(),
		Kind:          kind,
		Name:          normalizeName(name),
		DeclaringType: parent,
		Access:        model.AccessPublic,
		Aspect:        f.Aspect,
		Layer:         f.Layer,
	}
}

// normalizeName returns the NFC form of an identifier.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if norm.NFC.IsNormalString(name) {
		return name
	}
	return norm.NFC.String(name)
}

// base holds the state every builder shares.
type base struct {
	types  *types.Interner
	h      Header
	frozen bool
}

func (b *base) mustMutable() {
	if b.frozen {
		panic(fmt.Sprintf("builder: %s %q mutated after Freeze", b.h.Kind, b.h.Name))
	}
}

// Ref returns the reference the introduced declaration will have.
func (b *base) Ref() model.Ref { return b.h.Ref }

// Name returns the current name.
func (b *base) Name() string { return b.h.Name }

// DeclaringType returns the target the declaration is introduced into.
func (b *base) DeclaringType() model.Ref { return b.h.DeclaringType }

// IsFrozen reports whether Freeze was called.
func (b *base) IsFrozen() bool { return b.frozen }

// IsStatic reports whether the builder is static.
func (b *base) IsStatic() bool { return b.h.Flags&model.FlagStatic != 0 }

// Flags returns the current modifier flags.
func (b *base) Flags() model.Flags { return b.h.Flags }

// IsNew reports whether the engine classified the builder as hiding a member.
func (b *base) IsNew() bool { return b.h.IsNew }

// HasNewKeyword reports whether the 'new' modifier will be emitted.
func (b *base) HasNewKeyword() bool { return b.h.HasNewKeyword }

// IsOverride reports whether the builder overrides a base member.
func (b *base) IsOverride() bool { return b.h.IsOverride }

// Overridden returns the hidden or overridden member.
func (b *base) Overridden() model.Ref { return b.h.Overridden }

// Aspect returns the producing aspect.
func (b *base) Aspect() string { return b.h.Aspect }

// SetName renames the declaration.
func (b *base) SetName(name string) {
	b.mustMutable()
	b.h.Name = normalizeName(name)
}

// SetAccess changes accessibility.
func (b *base) SetAccess(a model.Accessibility) {
	b.mustMutable()
	b.h.Access = a
}

func (b *base) setFlag(f model.Flags, on bool) {
	b.mustMutable()
	if on {
		b.h.Flags |= f
		return
	}
	b.h.Flags &^= f
}

// SetStatic toggles the static modifier.
func (b *base) SetStatic(on bool) { b.setFlag(model.FlagStatic, on) }

// SetVirtual toggles the virtual modifier.
func (b *base) SetVirtual(on bool) { b.setFlag(model.FlagVirtual, on) }

// SetAbstract toggles the abstract modifier.
func (b *base) SetAbstract(on bool) { b.setFlag(model.FlagAbstract, on) }

// SetSealed toggles the sealed modifier.
func (b *base) SetSealed(on bool) { b.setFlag(model.FlagSealed, on) }

// SetAsync toggles the async modifier.
func (b *base) SetAsync(on bool) { b.setFlag(model.FlagAsync, on) }

// AddAttribute attaches a custom attribute.
func (b *base) AddAttribute(name string, args ...string) {
	b.mustMutable()
	b.h.Attributes = append(b.h.Attributes, model.Attribute{Name: name, Args: append([]string(nil), args...)})
}

// SetExplicitInterface makes the declaration an explicit implementation of iface.
func (b *base) SetExplicitInterface(iface model.Ref) {
	b.mustMutable()
	b.h.ExplicitInterface = iface
}

// SetTemplate sets the body template. Builder.Proceed marks where the
// original or overridden implementation is invoked.
func (b *base) SetTemplate(lines ...string) {
	b.mustMutable()
	b.h.Template = append([]string(nil), lines...)
}

// SetCompileTimeOnly hides the declaration from the design-time view.
func (b *base) SetCompileTimeOnly(on bool) {
	b.mustMutable()
	b.h.CompileTimeOnly = on
}

// MarkNew records that the declaration hides existing.
func (b *base) MarkNew(existing model.Ref) {
	b.mustMutable()
	b.h.IsNew = true
	b.h.HasNewKeyword = true
	b.h.Overridden = existing
}

// MarkOverride records that the declaration overrides existing.
func (b *base) MarkOverride(existing model.Ref) {
	b.mustMutable()
	b.h.IsOverride = true
	b.h.Overridden = existing
}

func (b *base) freezeHeader(desc string) Header {
	h := b.h
	h.Attributes = cloneAttributes(b.h.Attributes)
	h.Template = append([]string(nil), b.h.Template...)
	h.Description = desc
	b.frozen = true
	return h
}

func (b *base) typeName(id types.TypeID) string {
	if id == types.NoTypeID {
		return "void"
	}
	return b.types.Display(id)
}

func (b *base) paramList(params []*Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = b.typeName(p.typ)
	}
	return strings.Join(parts, ", ")
}

// Builder is implemented by every mutable builder.
type Builder interface {
	Ref() model.Ref
	Name() string
	DeclaringType() model.Ref
	IsFrozen() bool
	Describe() string
	FreezeData() Data
}
