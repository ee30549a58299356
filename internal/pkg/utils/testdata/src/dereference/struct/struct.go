package structdata

type foo struct{}

func F() interface{} {
	f := foo{}
	return f
}
