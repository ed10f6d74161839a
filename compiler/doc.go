/*
Package compiler turns expression trees into TEAL assembly.

	ast.Expr ->
		analyze -> call graph, by-ref recursion check
		front   -> basic blocks per unit (main program and each subroutine)
		back    -> normalized, ordered, flattened, slots assigned, linked
		constants (optional) -> intcblock/bytecblock
		format  -> text

Package abi builds ast.Expr trees that encode and decode ABI values
and encodes the same values on the host.
*/
package compiler
