// Command emheapctl inspects emheap arenas and replays allocation traces
// against them.
package main

func main() {
	execute()
}
