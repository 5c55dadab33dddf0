package typeatom

// Constructors for the common atomic/union shapes, matching the "Exposes"
// list in spec §4.1 (get_int, get_string, get_mixed_any, get_nothing,
// get_literal_string, get_vec(e), get_dict_params, wrap_atomic, ...).

// WrapAtomic wraps a single atomic into a one-member union.
func WrapAtomic(a *Atomic) *Union { return NewUnion(a) }

func GetInt() *Union    { return WrapAtomic(&Atomic{Kind: KindInt}) }
func GetFloat() *Union  { return WrapAtomic(&Atomic{Kind: KindFloat}) }
func GetBool() *Union   { return WrapAtomic(&Atomic{Kind: KindBool}) }
func GetString() *Union { return WrapAtomic(&Atomic{Kind: KindString}) }
func GetNull() *Union   { return WrapAtomic(&Atomic{Kind: KindNull}) }
func GetTrue() *Union   { return WrapAtomic(&Atomic{Kind: KindTrue}) }
func GetFalse() *Union  { return WrapAtomic(&Atomic{Kind: KindFalse}) }

// GetNothing returns the bottom type. Never produce an empty union; use
// this instead, per the invariant in spec §3/§8.
func GetNothing() *Union { return WrapAtomic(&Atomic{Kind: KindNothing}) }

func GetMixed() *Union    { return WrapAtomic(&Atomic{Kind: KindMixed}) }
func GetMixedAny() *Union { return WrapAtomic(&Atomic{Kind: KindMixedAny}) }

func GetLiteralInt(v int64) *Union {
	return WrapAtomic(&Atomic{Kind: KindLiteralInt, LiteralInt: v})
}

func GetLiteralString(v string) *Union {
	return WrapAtomic(&Atomic{Kind: KindLiteralString, LiteralString: v})
}

func GetLiteralClassname(v string) *Union {
	return WrapAtomic(&Atomic{Kind: KindLiteralClassname, LiteralClassname: v})
}

// GetVec builds vec<element>.
func GetVec(element *Union) *Union {
	return WrapAtomic(&Atomic{Kind: KindVec, Element: element})
}

// GetNonEmptyVec builds a non-empty vec<element>.
func GetNonEmptyVec(element *Union) *Union {
	return WrapAtomic(&Atomic{Kind: KindVec, Element: element, NonEmpty: true})
}

// GetKeyset builds keyset<element>.
func GetKeyset(element *Union) *Union {
	return WrapAtomic(&Atomic{Kind: KindKeyset, Element: element})
}

// GetDictParams builds a dict with only (key,value) generic params and no
// known items.
func GetDictParams(key, value *Union) *Union {
	return WrapAtomic(&Atomic{Kind: KindDict, Params: &DictParams{Key: key, Value: value}})
}

// GetShapeDict builds a dict with a fixed, named set of string keys and
// per-key types (a "Shape", per the glossary).
func GetShapeDict(shapeName string, items map[string]*KnownItem, order []string) *Union {
	return WrapAtomic(&Atomic{Kind: KindDict, ShapeName: shapeName, KnownItems: items, KnownItemKeys: order})
}

// GetNamedObject builds a named-object atomic, optionally generic.
func GetNamedObject(symbol string, generics ...*Union) *Union {
	return WrapAtomic(&Atomic{Kind: KindNamedObject, ObjectName: symbol, GenericParams: generics})
}

// GetThisObject builds the `this`-flagged named-object atomic used for
// static-context resolution (§4.1 type_expander resolving "this"/"self").
func GetThisObject(symbol string) *Union {
	return WrapAtomic(&Atomic{Kind: KindNamedObject, ObjectName: symbol, IsThis: true})
}

// GetTemplateParam builds a template-param placeholder.
func GetTemplateParam(name, scope string, asType *Union) *Union {
	return WrapAtomic(&Atomic{Kind: KindTemplateParam, ObjectName: name, TemplateScope: scope, AsType: asType})
}

// GetTypeAlias builds a type-alias reference.
func GetTypeAlias(name string, params []*Union, asType *Union) *Union {
	return WrapAtomic(&Atomic{Kind: KindTypeAlias, ObjectName: name, GenericParams: params, AsType: asType})
}

// GetStringWithFlags builds a string refinement carrying truthy/non-empty/
// all-literal flags, used by the concat analyzer (§4.6).
func GetStringWithFlags(truthy, nonEmpty, allLiteral bool) *Union {
	return WrapAtomic(&Atomic{Kind: KindStringWithFlags, StringIsTruthy: truthy, StringIsNonEmpty: nonEmpty, StringAllLiteral: allLiteral})
}

// GetReference builds an unresolved-symbol placeholder.
func GetReference(symbol string) *Union {
	return WrapAtomic(&Atomic{Kind: KindReference, ReferenceSymbol: symbol})
}
