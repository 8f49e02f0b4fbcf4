package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	urfave "github.com/urfave/cli/v3"

	"credit-score/model"
)

var trainCmd = &urfave.Command{
	Name:  "train",
	Usage: "Train a forest from a CSV dataset and write the model artifact",
	Flags: []urfave.Flag{
		&urfave.StringFlag{
			Name:     "data",
			Usage:    "CSV with the feature columns and " + model.TargetColumn,
			Required: true,
		},
		&urfave.StringFlag{
			Name:  "out",
			Usage: "Where to write the artifact",
			Value: "credit_score_model.json",
		},
		&urfave.IntFlag{
			Name:  "trees",
			Usage: "Number of trees",
			Value: model.DefaultTrainOptions().Trees,
		},
		&urfave.IntFlag{
			Name:  "max-depth",
			Usage: "Maximum tree depth",
			Value: model.DefaultTrainOptions().MaxDepth,
		},
		&urfave.IntFlag{
			Name:  "min-leaf",
			Usage: "Minimum samples per leaf",
			Value: model.DefaultTrainOptions().MinSamplesLeaf,
		},
		&urfave.IntFlag{
			Name:  "seed",
			Usage: "Random seed for the split and bootstrap samples",
			Value: int(model.DefaultTrainOptions().Seed),
		},
		&urfave.FloatFlag{
			Name:  "test-fraction",
			Usage: "Share of rows held out for evaluation",
			Value: 0.2,
		},
	},
	Action: cmdTrain,
}

func cmdTrain(ctx context.Context, cmd *urfave.Command) error {
	testFraction := cmd.Float("test-fraction")
	if testFraction < 0 || testFraction >= 1 {
		return fmt.Errorf("test-fraction must be in [0, 1), got %v", testFraction)
	}
	seed := cmd.Int("seed")
	if seed < 0 {
		return fmt.Errorf("seed must not be negative, got %d", seed)
	}

	path := cmd.String("data")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, err := model.ReadDataset(f)
	if err != nil {
		return fmt.Errorf("reading dataset %s: %w", path, err)
	}

	train, test := ds.Split(testFraction, uint64(seed))
	slog.Info("dataset loaded", "path", path, "rows", ds.Len(), "train", train.Len(), "test", test.Len())

	opts := model.TrainOptions{
		Trees:          cmd.Int("trees"),
		MaxDepth:       cmd.Int("max-depth"),
		MinSamplesLeaf: cmd.Int("min-leaf"),
		Seed:           uint64(seed),
	}

	start := time.Now()
	forest, err := model.Train(ctx, train, opts)
	if err != nil {
		return fmt.Errorf("training: %w", err)
	}
	slog.Info("training finished", "trees", len(forest.Trees), "duration", time.Since(start))

	if test.Len() > 0 {
		m := model.Evaluate(forest, test)
		slog.Info("held-out metrics", "mae", m.MAE, "mse", m.MSE, "rmse", m.RMSE, "r2", m.R2)
	}

	out := cmd.String("out")
	if err := model.Save(out, forest); err != nil {
		return fmt.Errorf("saving model: %w", err)
	}
	slog.Info("model written", "path", out)
	return nil
}
