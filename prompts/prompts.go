package prompts

import _ "embed"

// Embedded prompt files

//go:embed semantic_answer.txt
var semanticAnswer string

func SemanticAnswer() string { return semanticAnswer }
