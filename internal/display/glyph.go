package display

// Terminal rendering of segment patterns, used by the simulator. Each
// pattern becomes three rows of three cells:
//
//	 _
//	|_|
//	|_|
func segRune(p, seg SegPattern, on rune) rune {
	if p&seg != 0 {
		return on
	}
	return ' '
}

// Rows renders one segment pattern as three fixed-width strings.
func Rows(p SegPattern) [3]string {
	return [3]string{
		string([]rune{' ', segRune(p, SegA, '_'), ' '}),
		string([]rune{segRune(p, SegF, '|'), segRune(p, SegG, '_'), segRune(p, SegB, '|')}),
		string([]rune{segRune(p, SegE, '|'), segRune(p, SegD, '_'), segRune(p, SegC, '|')}),
	}
}

// FrameRows renders a full three-digit frame as three text rows with a
// cell of spacing between digits.
func FrameRows(f Frame) [3]string {
	var out [3]string
	for i, d := range f.Digits {
		rows := Rows(d)
		for r := 0; r < 3; r++ {
			if i > 0 {
				out[r] += " "
			}
			out[r] += rows[r]
		}
	}
	return out
}
