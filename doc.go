/*
Package earleygo is a general context-free recognizer built on Earley's
algorithm, with the Aycock–Horspool nullable-symbol optimization and a
lookahead-keyed goto-reuse cache for repeated token contexts.

It accepts an arbitrary context-free grammar — rules with empty right-hand
sides, left recursion, and ambiguity are all fine — and a token sequence, and
decides whether the sequence is a sentence of the grammar. A successful run
also produces the item-set chart and a reduction graph from which a parse
forest can be recovered. Package structure:

■ grammar: canonical grammar model (symbols, rules, nullable/FIRST/FOLLOW).

■ item: interned dotted items with precomputed lookahead sets.

■ earley: the recognition engine, its chart, goto cache, and reduction
builder.

■ forest: shared packed parse forest extraction from a reduction graph.

■ scanner, loader: the external boundaries — tokenizers and grammar-file
readers — that feed the engine but are not part of the core.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package earleygo
