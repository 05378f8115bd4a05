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
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/convexenv/InputParameters"
	"github.com/notargets/convexenv/envelope"
)

// PointCmd represents the point command
var PointCmd = &cobra.Command{
	Use:   "point",
	Short: "Evaluate the envelope at one query point",
	Long: `Evaluate the envelope at one query point and list every candidate simplex.
Without a problem file the hinge example is evaluated at w = 0.1, y = 0.5.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ip   *InputParameters.InputParameters
			w, y []float64
		)
		if ip, err = loadProblem(cmd); err != nil {
			return
		}
		if w, err = cmd.Flags().GetFloat64Slice("w"); err != nil {
			return
		}
		if y, err = cmd.Flags().GetFloat64Slice("y"); err != nil {
			return
		}
		if len(w) != 0 {
			ip.Query.W = w
		}
		if len(y) != 0 {
			ip.Query.Y = y
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		_, err = RunPoint(ctx, ip, cmd.OutOrStdout())
		return
	},
}

func init() {
	rootCmd.AddCommand(PointCmd)
	PointCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML problem file defining Function, W, Y, Query and Solver")
	PointCmd.Flags().Float64Slice("w", nil, "query w, overrides Query.W")
	PointCmd.Flags().Float64Slice("y", nil, "query y, overrides Query.Y")
}

func loadProblem(cmd *cobra.Command) (ip *InputParameters.InputParameters, err error) {
	var fileName string
	if fileName, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
		return
	}
	if len(fileName) == 0 {
		return InputParameters.NewDefault(), nil
	}
	return InputParameters.Read(fileName)
}

// problemEnvelope builds the envelope of ip with the command line overrides.
func problemEnvelope(ip *InputParameters.InputParameters) (*envelope.Envelope, error) {
	extra := []envelope.Option{envelope.WithLogger(logger)}
	if n := viper.GetInt("workers"); n > 0 {
		extra = append(extra, envelope.WithWorkers(n))
	}
	return ip.NewEnvelope(extra...)
}

func RunPoint(ctx context.Context, ip *InputParameters.InputParameters, out io.Writer) (res *envelope.Result, err error) {
	var env *envelope.Envelope
	if env, err = problemEnvelope(ip); err != nil {
		return
	}
	if res, err = env.Evaluate(ctx, ip.Query.W, ip.Query.Y); err != nil {
		if errors.Is(err, envelope.ErrNoContainingSimplex) {
			err = fmt.Errorf("%w; y must lie in the convex hull of Y", err)
		}
		return
	}

	fmt.Fprintf(out, "%s\n", ip.Title)
	fmt.Fprintf(out, "env(f)(%v, %v) = %.8g\n\n", ip.Query.W, ip.Query.Y, res.Value)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tsimplex\tweights\tvalue\tstatus\titerations")
	for i, c := range res.Candidates {
		mark := ""
		if i == res.Best {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%v\t%.4g\t%.8g\t%s\t%d\n",
			mark, c.Index, c.Weights, c.Value, c.Status, c.Iterations)
	}
	if err = tw.Flush(); err != nil {
		return
	}
	fmt.Fprintf(out, "\n%d of %d subsets of Y contain y\n", res.Stats.Accepted, res.Stats.Examined)
	return
}
