package advice

// InstanceMethodBefore observes an instance method before its body runs.
type InstanceMethodBefore interface {
	BeforeMethod(target any, method Method, args Args, pluginType string) error
}

// InstanceMethodAfter observes an instance method after it returned, on both
// the success and the failure path. result is nil when the body failed.
type InstanceMethodAfter interface {
	AfterMethod(target any, method Method, args Args, result any, pluginType string) error
}

// InstanceMethodThrowing observes the error of a failing instance method.
type InstanceMethodThrowing interface {
	OnThrowing(target any, method Method, args Args, err error, pluginType string) error
}

// StaticMethodBefore observes a static method before its body runs.
type StaticMethodBefore interface {
	BeforeStaticMethod(class Class, method Method, args Args, pluginType string) error
}

// StaticMethodAfter observes a static method after it returned.
type StaticMethodAfter interface {
	AfterStaticMethod(class Class, method Method, args Args, result any, pluginType string) error
}

// StaticMethodThrowing observes the error of a failing static method.
type StaticMethodThrowing interface {
	OnStaticThrowing(class Class, method Method, args Args, err error, pluginType string) error
}

// ConstructorBefore observes a constructor before the value is built.
type ConstructorBefore interface {
	BeforeConstructor(class Class, args Args, pluginType string) error
}

// ConstructorAdvice observes a constructor after it returned. target is the
// constructed value, or nil when construction failed.
type ConstructorAdvice interface {
	OnConstructor(target any, args Args, pluginType string) error
}

// ConstructorThrowing observes the error of a failing constructor.
type ConstructorThrowing interface {
	OnConstructorThrowing(class Class, args Args, err error, pluginType string) error
}
