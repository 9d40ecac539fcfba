package fit

// Op enumerates the knot-editing operations.
type Op int

const (
	OpNone Op = iota
	OpAdd
	OpAddMedian
	OpDouble
	OpHalve
	OpDelete
	OpMove
	OpMoveMedian
	OpQuit
)

// Event carries one edit request: the op, the cursor position in data
// coordinates and, for nearest-knot lookups, in screen pixels.
type Event struct {
	Op     Op
	X, Y   float64
	Px, Py float64
}

// OpForKey maps the editing key bindings to operations. Unrecognized
// keys map to OpNone.
func OpForKey(key string) Op {
	switch key {
	case "a", "3":
		return OpAdd
	case "A":
		return OpAddMedian
	case "+":
		return OpDouble
	case "_":
		return OpHalve
	case "d", "4":
		return OpDelete
	case "m":
		return OpMove
	case "M":
		return OpMoveMedian
	case "q":
		return OpQuit
	}
	return OpNone
}
