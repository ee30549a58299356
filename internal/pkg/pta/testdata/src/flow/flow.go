package flow

type Box struct {
	Val string
}

func source() string {
	return "tainted"
}

func sink(s string) {
}

// main exercises New (Box{}), StoreField (b.Val = ...), a static call
// lowered from source(), a field load feeding sink's argument, and the
// InvokeStatic call to sink itself. It is named main because
// ssafrontend.Build seeds the analysis from the package's main function.
func main() {
	b := &Box{}
	b.Val = source()
	sink(b.Val) // want `invoke#\d+\[source\]\(tainted\) -> invoke#\d+\[sink\]#0`
}
