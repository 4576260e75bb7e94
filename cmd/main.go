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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/receivai/receivai"
	"github.com/receivai/receivai/config"
	"github.com/receivai/receivai/database"
	"github.com/receivai/receivai/internal/notification"
)

// Receivai wraps the root Cobra command of the CLI.
type Receivai struct {
	cmd *cobra.Command
}

// receivaiInstance holds the store instance and its configuration, shared
// across subcommands after the pre-run hook has initialized them.
type receivaiInstance struct {
	receivai *receivai.Receivai
	cnf      *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the store before any
// subcommand executes.
func preRun(app *receivaiInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newReceivai, err := setupReceivai(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.receivai = newReceivai
		app.cnf = cnf

		return nil
	}
}

func setupReceivai(cfg *config.Configuration) (*receivai.Receivai, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newReceivai, err := receivai.NewReceivai(db)
	if err != nil {
		return nil, fmt.Errorf("error creating receivai: %v", err)
	}
	return newReceivai, nil
}

func NewCLI() *Receivai {
	var configFile string
	b := &receivaiInstance{}

	var rootCmd = &cobra.Command{
		Use:   "receivai",
		Short: "Invoice financing on a contract ledger",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./receivai.json", "Configuration file for the receivai server")
	rootCmd.PersistentPreRunE = preRun(b, &configFile)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(seedCommands(b))
	rootCmd.AddCommand(recommendCommands(b))
	rootCmd.AddCommand(configCommands())

	return &Receivai{cmd: rootCmd}
}

func (w Receivai) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
