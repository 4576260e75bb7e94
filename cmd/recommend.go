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

// recommendCommands returns the command that prints the advisor's view of
// an identity's portfolio.
func recommendCommands(b *receivaiInstance) *cobra.Command {
	var identity string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "print portfolio recommendations for an identity",
		Run: func(cmd *cobra.Command, args []string) {
			if identity == "" {
				log.Fatal("an identity is required. pass it with --identity")
			}

			session := receivai.NewDemoSession(identity)
			recommendations, err := b.receivai.Recommendations(context.Background(), session)
			if err != nil {
				log.Fatalf("Error generating recommendations: %v\n", err)
			}

			if len(recommendations) == 0 {
				fmt.Println("Nothing to flag. The portfolio looks healthy.")
				return
			}

			for _, rec := range recommendations {
				fmt.Printf("[%s] %s\n", rec.Priority, rec.Title)
				fmt.Printf("    %s\n", rec.Description)
				if rec.SuggestedAction != "" {
					fmt.Printf("    suggested action: %s\n", rec.SuggestedAction)
				}
			}
		},
	}
	cmd.Flags().StringVar(&identity, "identity", "", "ledger address to advise")

	return cmd
}
