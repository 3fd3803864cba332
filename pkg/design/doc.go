// Package design holds the placement/routing data model and its JSON file format.
//
// # Model
//
// A [Design] is a rectangular gcell grid (rows × cols) over a stack of [Layer]s.
// Every layer has a preferred routing [Direction], a weight factor used for
// wire and via costs, and a default routing supply per gcell. [Instance]s sit on
// gcells; each has a [Master] whose [MasterPin]s are assigned to layers. A [Net]
// connects [Pin]s (instance + master pin) and may not route below its minimum
// routing layer.
//
// Layers are indexed from 0 (bottom). Row and column ranges are inclusive.
//
// # File Format
//
// Designs are stored as JSON. Layers and master pins are referenced by name;
// route endpoints use [row, col, layer] triples with 0-based layer indices:
//
//	{
//	  "grid": {"row_begin": 1, "row_end": 10, "col_begin": 1, "col_end": 10},
//	  "layers": [
//	    {"name": "M1", "direction": "H", "factor": 1, "supply": 10},
//	    {"name": "M2", "direction": "V", "factor": 1, "supply": 10}
//	  ],
//	  "supply_adjustments": [{"row": 2, "col": 2, "layer": 0, "delta": -10}],
//	  "masters": [{"name": "MC1", "pins": [{"name": "A", "layer": "M1"}]}],
//	  "instances": [{"name": "C1", "master": "MC1", "row": 3, "col": 4}],
//	  "nets": [{"name": "N1", "min_layer": "M1", "pins": [{"inst": "C1", "pin": "A"}]}],
//	  "routes": [{"net": "N1", "from": [3, 4, 0], "to": [3, 7, 0]}]
//	}
//
// Use [ReadFile]/[Read] to load and validate a design and [WriteFile]/[Write] to
// store it. Loading resolves every name reference and rejects designs whose
// instances or routes fall outside the grid; such errors carry the
// INVALID_DESIGN code from pkg/errors.
package design
