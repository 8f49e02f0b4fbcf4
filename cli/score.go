package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	urfave "github.com/urfave/cli/v3"

	"credit-score/domain"
)

var scoreCmd = &urfave.Command{
	Name:  "score",
	Usage: "Score one applicant from a JSON file (or stdin) and print the response",
	Flags: []urfave.Flag{
		&urfave.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Path to the applicant JSON, - for stdin",
			Value:   "-",
		},
	},
	Action: cmdScore,
}

func cmdScore(ctx context.Context, cmd *urfave.Command) error {
	cfg, err := configFrom(ctx)
	if err != nil {
		return err
	}

	rec, err := readApplicant(cmd.String("input"), cmd.Root().Reader)
	if err != nil {
		return err
	}

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	assessment, err := p.service.Score(ctx, rec)
	if err != nil {
		return fmt.Errorf("scoring applicant: %w", err)
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return encode(out, cmd.String(formatFlag.Name), assessment.Response)
}

// readApplicant decodes the applicant with the same strictness as the API.
func readApplicant(path string, stdin io.Reader) (domain.ApplicantRecord, error) {
	var r io.Reader
	if path == "-" || path == "" {
		if stdin == nil {
			stdin = os.Stdin
		}
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return domain.ApplicantRecord{}, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var req domain.ApplicantRequest
	if err := dec.Decode(&req); err != nil {
		return domain.ApplicantRecord{}, fmt.Errorf("decoding applicant: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.ApplicantRecord{}, errors.New("decoding applicant: input must contain a single JSON object")
	}
	return req.Record()
}
