package resolve

// Kind identifies the category of external source or sink a Location probes
// or mutates. Dispatch is a single exhaustive switch per kind; see resolve.go
// and write.go.
type Kind int

const (
	// KindUnknown guards against zero-valued locations so call sites can
	// detect missing configuration.
	KindUnknown Kind = iota
	// KindRequestVar reads/writes a request parameter by name.
	KindRequestVar
	// KindQueryVar reads/writes a query variable on the query object.
	KindQueryVar
	// KindQueryProp reads/writes a property on the query object.
	KindQueryProp
	// KindPluginOption reads/writes a plugin-scoped persisted option.
	KindPluginOption
	// KindOption reads/writes a generic persisted option.
	KindOption
	// KindTransient reads/writes an expiring transient entry.
	KindTransient
	// KindConstant reads/defines a constant, including namespaced
	// "Owner::NAME" forms.
	KindConstant
	// KindGlobalVar writes a global variable. Write-only: a read location of
	// this kind always falls through to the default.
	KindGlobalVar
	// KindStaticProp reads/writes a static property on a registered class.
	KindStaticProp
	// KindStaticMethod invokes a static method on a registered class.
	KindStaticMethod
	// KindBoundProp reads/writes a property on a container-bound object.
	KindBoundProp
	// KindBoundMethod invokes a method on a container-bound object.
	KindBoundMethod
	// KindFunc invokes a registered function or an inline callback.
	KindFunc
	// KindFilter applies named filter tags to the default, adopting the first
	// result that differs from it. Read-only.
	KindFilter
)

func (k Kind) String() string {
	switch k {
	case KindRequestVar:
		return "request_var"
	case KindQueryVar:
		return "query_var"
	case KindQueryProp:
		return "query_prop"
	case KindPluginOption:
		return "plugin_option"
	case KindOption:
		return "option"
	case KindTransient:
		return "transient"
	case KindConstant:
		return "constant"
	case KindGlobalVar:
		return "global_var"
	case KindStaticProp:
		return "static_prop"
	case KindStaticMethod:
		return "static_method"
	case KindBoundProp:
		return "bound_prop"
	case KindBoundMethod:
		return "bound_method"
	case KindFunc:
		return "func"
	case KindFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// ParseKind converts a string representation into the corresponding Kind.
// Returns KindUnknown for unrecognised values.
func ParseKind(value string) Kind {
	switch value {
	case "request_var":
		return KindRequestVar
	case "query_var":
		return KindQueryVar
	case "query_prop":
		return KindQueryProp
	case "plugin_option":
		return KindPluginOption
	case "option":
		return KindOption
	case "transient":
		return KindTransient
	case "constant":
		return KindConstant
	case "global_var":
		return KindGlobalVar
	case "static_prop":
		return KindStaticProp
	case "static_method":
		return KindStaticMethod
	case "bound_prop":
		return KindBoundProp
	case "bound_method":
		return KindBoundMethod
	case "func":
		return KindFunc
	case "filter":
		return KindFilter
	default:
		return KindUnknown
	}
}
