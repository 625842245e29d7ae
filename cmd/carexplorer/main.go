// Command carexplorer serves and queries the car catalog.
package main

func main() {
	Execute()
}
