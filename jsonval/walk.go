package jsonval

// Walk performs a pre-order depth-first traversal of v, calling visit on every
// node. A visit returning true stops the traversal immediately; Walk reports
// whether any visit did so. Array elements are visited in index order and
// object fields in sorted-key order.
func Walk(v Value, visit func(Value) bool) bool {
	if visit(v) {
		return true
	}
	switch v.kind {
	case KindArray:
		for _, el := range v.arrVal {
			if Walk(el, visit) {
				return true
			}
		}
	case KindObject:
		for _, k := range v.sortedKeys() {
			if Walk(v.objVal[k], visit) {
				return true
			}
		}
	}
	return false
}
