// Package serialization encodes layer state as the recursive JSON content
// that nets persist.
//
// Every layer serialises itself to a string. Composite layers serialise to a
// JSON array holding each child's string, in child order, so the content of
// a whole net is a tree of nested JSON strings:
//
//	["[[0.1,0.2],[0.3,0.4]]", "null", "[0.5,0.6]"]
//
// Empty content ("" or "null") means the layer has no stored state and must
// initialise itself from its seeding function.
//
// Example usage:
//
//	content, err := serialization.Encode(weights)
//	if err != nil {
//	    return err
//	}
//
//	var restored tensor.Matrix
//	if err := serialization.Decode(content, "dense", &restored); err != nil {
//	    return err
//	}
package serialization
