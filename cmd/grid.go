/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

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
package cmd

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/notargets/convexenv/InputParameters"
	"github.com/notargets/convexenv/envelope"
)

// GridCmd represents the grid command
var GridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Tabulate the envelope over a grid of w and y as CSV",
	Long: `Tabulate the envelope over the Grid section of the problem file, varying the
first coordinate of w and y. Rows are written to stdout as w,y,value; points
outside the hull of Y get NaN.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var ip *InputParameters.InputParameters
		if ip, err = loadProblem(cmd); err != nil {
			return
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return RunGrid(ctx, ip, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(GridCmd)
	GridCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML problem file defining Function, W, Y and Grid")
}

func RunGrid(ctx context.Context, ip *InputParameters.InputParameters, out io.Writer) (err error) {
	var (
		env     *envelope.Envelope
		queries []InputParameters.Query
	)
	if env, err = problemEnvelope(ip); err != nil {
		return
	}
	if queries, err = ip.GridQueries(); err != nil {
		return
	}
	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	cw := csv.NewWriter(out)
	if err = cw.Write([]string{"w", "y", "value"}); err != nil {
		return
	}
	for _, q := range queries {
		value := math.NaN()
		res, err := env.Evaluate(ctx, q.W, q.Y)
		switch {
		case err == nil:
			value = res.Value
		case errors.Is(err, envelope.ErrNoContainingSimplex):
			logger.Debug("no containing simplex", "w", q.W, "y", q.Y)
		default:
			return err
		}
		if err := cw.Write([]string{format(q.W[0]), format(q.Y[0]), format(value)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
