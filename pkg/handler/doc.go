/*
Package handler implements the file operations that run inside a task.

	+-------------+
	|   Handler   |
	| (Configure) |
	+------+------+
	       |
	+------+------+
	|   Filter    |
	| (Select)    |
	+------+------+
	       |
	+------+------+
	|   Execute   |
	| (Transform) |
	+------+------+

🎯 Purpose:
- Turns a list of files into a new list of files
- Reports every file it touches through a Progress sink
- Composes with other handlers through Pipe and Combine

🔄 Flow:
1. A handler is configured through its ArgumentMap
2. The scheduler clones it, one clone per task
3. Filter narrows the input, Execute does the work
4. Per-file results go to OnFileComplete, the final verdict to OnComplete

⚡ Key Responsibilities:
- Name transforms (replace, case, duplicate numbering) that never touch disk
- Disk mutations (rename, copy, move, delete, attributes) in depth order
- Read-only walks (search, stat)

🤝 Interfaces:
- Handler: the contract every operation implements, open for new kinds
- Progress: the sink a running handler reports to
- Factory: registered constructors, looked up by name

📝 Design Philosophy:
Errors never escape Execute. A failed file is reported and skipped; a failed
batch is reported through OnComplete. Cancellation is cooperative: the
context and the Cancel flag are polled between files, never mid-file.
*/
package handler
