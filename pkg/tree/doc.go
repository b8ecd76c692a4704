// Package tree builds and reshapes binary prefix trees over a [dag.Graph].
//
// # Overview
//
// A prefix tree of width w combines w leaf cells, one per input bit, into a
// single root through w-1 internal nodes. Every internal node has two child
// slots; slot 0 leads towards the most significant leaves. The root itself
// is the first internal node.
//
// Each node carries a module from the catalog picked by its position: the
// root role at the top, left spine cells on the chain that owns the most
// significant leaf and cocycle cells everywhere else. Leaves use the
// pre-processing roles. Structural edits re-tag nodes as they move, so
// callers only deal in shapes.
//
// # Ranks
//
// Shapes of width w are numbered 0 through catalan(w-1)-1. [Tree.Unrank]
// builds a shape from its rank and [Tree.Rank] recovers it. Rank 0 is the
// serial (ripple) chain. Ranks at or past the mirror point are mirror
// images of ranks below it, which [Tree.MirrorSubtree] exploits. Shapes in
// the balanced split class, where both children have the same width, have
// no mirror other than the class endpoints.
//
// # Transforms
//
// Rotations move a node one level up ([Tree.LeftRotate], [Tree.RightRotate])
// and shifts repeat them until a leaf changes sides ([Tree.LeftShift],
// [Tree.RightShift]). Buffers pad branches ([Tree.InsertBuffer],
// [Tree.RemoveBuffer]). The balancers combine these: [Tree.Balance] reduces
// height greedily, [Tree.LBalance] and [Tree.RBalance] pack leaves to one
// side, and [Tree.EqualizeDepths] pads every leaf to the same depth.
//
// The classic coordinate transforms LF, FL, FT and TF address nodes by
// column and row the way textbook prefix-graph drawings do.
//
// # Recipes
//
// [Tree.ApplyRecipe] reshapes a rank-0 tree into a named adder topology:
//
//	ripple, serial, ripple-carry  the chain itself
//	sklansky                      minimal depth, high fanout
//	kogge-stone                   minimal depth, every leaf padded
//	brent-kung                    sklansky with a lighter right branch
//
// # Errors
//
// Every edit checks the new attachments against the catalog before it
// mutates the graph, so a failing transform leaves the tree as it was.
// Errors carry STRUCTURAL, PORT_MISMATCH or RANK_OUT_OF_RANGE codes from
// [errors].
package tree
