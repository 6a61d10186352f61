// SPDX-License-Identifier: MPL-2.0

package main

import "cabar-cli/cmd/cabar"

func main() {
	cmd.Execute()
}
