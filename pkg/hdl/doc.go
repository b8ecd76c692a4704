// Package hdl emits structural Verilog and VHDL from a [dag.Netlist].
//
// The output holds the catalog definition of every instantiated cell, one
// generated module per block and the top-level module. Instances are grouped
// by tree row, leaves first, and each row opens with a comment naming it.
// Multi-bit pins are concatenated most significant bit first in Verilog and
// mapped bit by bit in VHDL.
//
// Cell templates go through text/template before they are written, with the
// [catalog.Module] as data, so a catalog may parameterize them.
package hdl
