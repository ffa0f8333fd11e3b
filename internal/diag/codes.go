package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Введение членов аспектами (advice)
	AdvInfo                      Code = 1000
	AdvMemberAlreadyExists       Code = 1001
	AdvDifferentKind             Code = 1002
	AdvDifferentStaticity        Code = 1003
	AdvDifferentType             Code = 1004
	AdvCannotOverrideSealed      Code = 1005
	AdvNewMemberInSameType       Code = 1006
	AdvInstanceIntoStaticType    Code = 1007
	AdvVirtualIntoSealedOrStruct Code = 1008
	AdvStaticVirtual             Code = 1009
	AdvStaticSealed              Code = 1010
	AdvParameterIntoStaticCtor   Code = 1011
	AdvParameterAlreadyExists    Code = 1012
	AdvUnsupportedStrategy       Code = 1013
	AdvTargetNotFound            Code = 1014
	AdvInvalidTarget             Code = 1015
	AdvInvalidOperator           Code = 1016
	AdvFinalizerNotAllowed       Code = 1017
	AdvMemberIgnored             Code = 1018
	AdvAdviceFailed              Code = 1019

	// Проект: модель, план аспектов, конфигурация
	PrjInfo          Code = 2000
	PrjInvalidModel  Code = 2001
	PrjUnknownType   Code = 2002
	PrjInvalidPlan   Code = 2003
	PrjUnknownTarget Code = 2004
	PrjAspectCycle   Code = 2005
	PrjDuplicate     Code = 2006
	PrjUnknownAspect Code = 2007

	ObsInfo    Code = 3000
	ObsTimings Code = 3001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                  "Unknown error",
		AdvInfo:                      "Advice information",
		AdvMemberAlreadyExists:       "Member already exists",
		AdvDifferentKind:             "Member of a different kind already exists",
		AdvDifferentStaticity:        "Existing member differs in staticity",
		AdvDifferentType:             "Existing member has a different type",
		AdvCannotOverrideSealed:      "Cannot override sealed or non-virtual member",
		AdvNewMemberInSameType:       "Cannot introduce new member when one exists in the same type",
		AdvInstanceIntoStaticType:    "Cannot introduce instance member into static type",
		AdvVirtualIntoSealedOrStruct: "Cannot introduce virtual member into sealed type or struct",
		AdvStaticVirtual:             "Cannot introduce static virtual member",
		AdvStaticSealed:              "Cannot introduce static sealed member",
		AdvParameterIntoStaticCtor:   "Cannot introduce parameter into static constructor",
		AdvParameterAlreadyExists:    "Parameter already exists",
		AdvUnsupportedStrategy:       "Override strategy is not supported for this member kind",
		AdvTargetNotFound:            "Advice target not found",
		AdvInvalidTarget:             "Invalid advice target",
		AdvInvalidOperator:           "Invalid operator signature",
		AdvFinalizerNotAllowed:       "Finalizers are only allowed in classes",
		AdvMemberIgnored:             "Introduction ignored",
		AdvAdviceFailed:              "Advice failed",
		PrjInfo:                      "Project information",
		PrjInvalidModel:              "Invalid model file",
		PrjUnknownType:               "Unknown type",
		PrjInvalidPlan:               "Invalid aspect plan",
		PrjUnknownTarget:             "Unknown advice target",
		PrjAspectCycle:               "Aspect ordering cycle",
		PrjDuplicate:                 "Duplicate declaration",
		PrjUnknownAspect:             "Unknown aspect",
		ObsInfo:                      "Observability information",
		ObsTimings:                   "Pipeline timings",
	}

	// codeFormat holds message templates for Emitf; arguments are positional.
	codeFormat = map[Code]string{
		AdvMemberAlreadyExists:       "the aspect '%s' cannot introduce %s into '%s' because it already contains '%s'",
		AdvDifferentKind:             "the aspect '%s' cannot introduce %s into '%s' because '%s' is a member of a different kind",
		AdvDifferentStaticity:        "the aspect '%s' cannot introduce %s into '%s' because '%s' differs in staticity",
		AdvDifferentType:             "the aspect '%s' cannot introduce %s into '%s' because '%s' has a different type",
		AdvCannotOverrideSealed:      "the aspect '%s' cannot override '%s' with %s because it is sealed or not overridable",
		AdvNewMemberInSameType:       "the aspect '%s' cannot introduce new %s into '%s' because '%s' is declared in the same type",
		AdvInstanceIntoStaticType:    "the aspect '%s' cannot introduce instance %s into static type '%s'",
		AdvVirtualIntoSealedOrStruct: "the aspect '%s' cannot introduce virtual %s into '%s' because it is sealed or a struct",
		AdvStaticVirtual:             "the aspect '%s' cannot introduce %s as static and virtual",
		AdvStaticSealed:              "the aspect '%s' cannot introduce %s as static and sealed",
		AdvParameterIntoStaticCtor:   "the aspect '%s' cannot introduce parameter '%s' into static constructor '%s'",
		AdvParameterAlreadyExists:    "the aspect '%s' cannot introduce parameter '%s' into '%s' because it already exists",
		AdvUnsupportedStrategy:       "the aspect '%s' cannot introduce %s into '%s' with strategy '%s'",
		AdvTargetNotFound:            "the aspect '%s' references '%s' which does not exist in this compilation",
		AdvInvalidTarget:             "the aspect '%s' cannot introduce %s into '%s': %s",
		AdvInvalidOperator:           "the aspect '%s' cannot introduce %s: %s",
		AdvFinalizerNotAllowed:       "the aspect '%s' cannot introduce a finalizer into '%s' because it is not a class",
		AdvMemberIgnored:             "the aspect '%s' ignored %s because '%s' already exists",
		AdvAdviceFailed:              "the advice '%s' of aspect '%s' failed: %v",
		PrjUnknownType:               "unknown type '%s'",
		PrjUnknownTarget:             "the advice '%s' references '%s' which does not exist",
		PrjAspectCycle:               "aspect '%s' participates in an ordering cycle: %s",
		PrjDuplicate:                 "duplicate %s '%s'",
		PrjUnknownAspect:             "aspect '%s' is ordered after unknown aspect '%s'",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ADV%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

// Format renders the code's message template with args. Codes without a
// template fall back to the title followed by the arguments.
func (c Code) Format(args ...any) string {
	if tmpl, ok := codeFormat[c]; ok {
		return fmt.Sprintf(tmpl, args...)
	}
	if len(args) == 0 {
		return c.Title()
	}
	return fmt.Sprintf("%s: %v", c.Title(), fmt.Sprint(args...))
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
