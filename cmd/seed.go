/*
Copyright 2025 ReceivAI Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/receivai/receivai"
)

// seedCommands returns the command that loads the showcase portfolio into
// an identity's snapshot. Identities that already hold invoices are left
// untouched.
func seedCommands(b *receivaiInstance) *cobra.Command {
	var identity string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "seed an identity with demo invoices",
		Run: func(cmd *cobra.Command, args []string) {
			if identity == "" {
				log.Fatal("an identity is required. pass it with --identity")
			}

			session := receivai.NewDemoSession(identity)
			invoices, err := b.receivai.SeedDemo(context.Background(), session)
			if err != nil {
				log.Fatalf("Error seeding demo data: %v\n", err)
			}

			fmt.Printf("%s holds %d invoices\n", identity, len(invoices))
			for _, inv := range invoices {
				fmt.Printf("  %s  %-24s %s\n", inv.InvoiceID, inv.DebtorName, inv.Status)
			}
		},
	}
	cmd.Flags().StringVar(&identity, "identity", "", "ledger address to seed")

	return cmd
}
