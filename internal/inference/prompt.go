package inference

import (
	"fmt"
	"strings"
)

// buildPromptPrefix builds the instructions placed before the ReAct format block.
// The result is a Go template: {{.tool_descriptions}} is filled by the agent.
func buildPromptPrefix(dbType, table string, topK int) string {
	var sb strings.Builder

	sb.WriteString("You are an agent designed to interact with a SQL database.\n")
	sb.WriteString("Given an input question, create a syntactically correct query to run, ")
	sb.WriteString("then look at the results of the query and return the answer.\n\n")

	if dbType != "" {
		fmt.Fprintf(&sb, "**Database Type: %s**\n", dbType)
		fmt.Fprintf(&sb, "Write SQL that strictly follows %s syntax rules.\n", dbType)
		switch dbType {
		case "SQLite":
			sb.WriteString("- Use double quotes for identifiers if needed, single quotes for strings\n")
			sb.WriteString("- Use || for string concatenation\n")
		case "MySQL":
			sb.WriteString("- Use backticks for identifiers, single quotes for strings\n")
			sb.WriteString("- Use CONCAT() for string concatenation\n")
		case "PostgreSQL":
			sb.WriteString("- Use double quotes for identifiers, single quotes for strings\n")
			sb.WriteString("- LIMIT syntax: LIMIT count OFFSET offset\n")
		}
		sb.WriteString("\n")
	}

	if table != "" {
		fmt.Fprintf(&sb, "The data lives in the table \"%s\".\n\n", escapeTemplate(table))
	}

	fmt.Fprintf(&sb, `Rules:
1. Unless the question asks for a specific number of examples, limit queries to at most %d results.
2. Only select the columns relevant to the question; never SELECT * on the whole table.
3. Always look at the table schema (describe_table) before querying it.
4. If a query fails, read the error, rewrite the query and try again.
5. DO NOT make any DML statements (INSERT, UPDATE, DELETE, DROP etc.) to the database.
6. If the question is unrelated to the database, answer "I don't know".
7. Write the Final Answer in the same language as the question, as a complete sentence with the numbers you found.
8. NEVER write "Action: None". If no tool is needed, give the Final Answer.

`, topK)

	sb.WriteString("You have access to the following tools:\n\n{{.tool_descriptions}}")
	return sb.String()
}

// escapeTemplate keeps identifiers from opening template actions
func escapeTemplate(s string) string {
	return strings.ReplaceAll(s, "{{", "{ {")
}
