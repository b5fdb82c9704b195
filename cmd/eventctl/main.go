// Command eventctl runs administrative tasks against the event service
// database: migrations, account bootstrap and role checks.
package main

import "os"

func main() {
	os.Exit(execute(newEnv()))
}
