package pointer_to_struct

type foo struct{}

func F() interface{} {
	f := &foo{}
	return f
}
