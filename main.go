// SPDX-License-Identifier: MPL-2.0

package main

import cmd "podsmith/cmd/podsmith"

func main() {
	cmd.Execute()
}
