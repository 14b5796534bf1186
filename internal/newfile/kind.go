package newfile

// Kind identifies what sort of Scala file gets created. The set is closed:
// every kind maps to exactly one template in template.go.
type Kind int

const (
	KindClass Kind = iota
	KindCaseClass
	KindObject
	KindTrait
	KindPackageObject
	KindWorksheet
	KindScript
)

// Kinds returns all supported kinds in the order they are presented
// to the user.
func Kinds() []Kind {
	return []Kind{
		KindClass,
		KindCaseClass,
		KindObject,
		KindTrait,
		KindPackageObject,
		KindWorksheet,
		KindScript,
	}
}

// ID returns the stable identifier used in protocol arguments and CLI flags.
func (k Kind) ID() string {
	switch k {
	case KindClass:
		return "class"
	case KindCaseClass:
		return "case-class"
	case KindObject:
		return "object"
	case KindTrait:
		return "trait"
	case KindPackageObject:
		return "package-object"
	case KindWorksheet:
		return "worksheet"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

// Label returns the human-readable form shown in prompts.
func (k Kind) Label() string {
	switch k {
	case KindClass:
		return "Class"
	case KindCaseClass:
		return "Case class"
	case KindObject:
		return "Object"
	case KindTrait:
		return "Trait"
	case KindPackageObject:
		return "Package object"
	case KindWorksheet:
		return "Worksheet"
	case KindScript:
		return "Script"
	default:
		return "Unknown"
	}
}

// ParseKind maps a kind identifier back to its Kind. The second result is
// false when the identifier matches no supported kind.
func ParseKind(id string) (Kind, bool) {
	for _, k := range Kinds() {
		if k.ID() == id {
			return k, true
		}
	}
	return 0, false
}

// NeedsName reports whether the kind requires a file/identifier name.
// Package objects always land in a fixed filename.
func (k Kind) NeedsName() bool {
	return k != KindPackageObject
}

// hasPackageHeader reports whether a package statement may be prepended
// to the generated content. Worksheets and scripts are headerless.
func (k Kind) hasPackageHeader() bool {
	switch k {
	case KindWorksheet, KindScript:
		return false
	default:
		return true
	}
}

// keyword returns the Scala declaration keyword for body-template kinds.
func (k Kind) keyword() string {
	switch k {
	case KindClass:
		return "class"
	case KindObject:
		return "object"
	case KindTrait:
		return "trait"
	default:
		return ""
	}
}
