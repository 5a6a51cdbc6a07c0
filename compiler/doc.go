/*

Process of lowering

C Program Text ->
	clang -fopenmp -Xclang -ast-dump=json ->
Clang AST Dump (clang) ->
	lower ->
GML Abstract Syntax Tree (ast) ->
	encode ->
GML Wire Json (codec)

GML Wire Json ->
	decode ->
GML Abstract Syntax Tree ->
	check / format / encode

*/
package compiler
