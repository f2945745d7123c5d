package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/limaJavier/ilp-timetabling/internal/config"
	"github.com/limaJavier/ilp-timetabling/pkg/ilp"
	"github.com/limaJavier/ilp-timetabling/pkg/model"
	"github.com/limaJavier/ilp-timetabling/pkg/report"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

// Exit codes follow the SAT competition convention
const (
	exitOptimal            = 10
	exitVerificationFailed = 15
	exitInfeasible         = 20
)

var (
	timetablers = map[string]func(ilp.Solver) model.Timetabler{
		"embedded":  model.NewEmbeddedRoomTimetabler,
		"postponed": model.NewIsolatedRoomTimetabler,
	}
	solvers = map[string]func(*config.Config) ilp.Solver{
		"gophersat": func(*config.Config) ilp.Solver {
			return ilp.NewGophersatSolver()
		},
		"cbc": func(cfg *config.Config) ilp.Solver {
			return ilp.NewCbcSolver(cfg.CbcPath, cfg.TimeLimit)
		},
	}
)

var (
	fileFlag = &cli.StringFlag{
		Name:     "file",
		Usage:    "path to the input file",
		Required: true,
	}
	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "path to the file where the report is written; the standard output is used when empty",
	}
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "optional config file (json, yaml or toml)",
	}
	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "report format: text or json",
		Value: string(report.FormatText),
	}
	solverFlag = &cli.StringFlag{
		Name:  config.Solver,
		Usage: "solver backend: " + strings.Join(config.SupportedSolvers, ", "),
	}
	strategyFlag = &cli.StringFlag{
		Name: config.Strategy,
		Usage: `strategy to build the timetable:
"embedded" (classrooms are decided by the solver, a timetable is found whenever one exists) or
"postponed" (classrooms are assigned after solving by matching, completeness is not guaranteed)`,
	}
	roundingFlag = &cli.StringFlag{
		Name:  config.Rounding,
		Usage: "how lesson hours that are not a multiple of the slot duration become slots: floor, ceil or reject",
	}
	slotDurationFlag = &cli.IntFlag{
		Name:  config.SlotDuration,
		Usage: "hours covered by a time slot",
	}
	cbcPathFlag = &cli.StringFlag{
		Name:  config.CbcPath,
		Usage: "path to the cbc executable",
	}
	timeLimitFlag = &cli.DurationFlag{
		Name:  config.TimeLimit,
		Usage: "time limit for the cbc backend, zero means no limit",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  config.LogLevel,
		Usage: "log level: panic, fatal, error, warn, info, debug or trace",
	}
)

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	app := cli.NewApp()
	app.Name = "timetabling"
	app.Usage = "build a weekly class timetable through integer linear programming"
	app.Flags = []cli.Flag{
		fileFlag,
		outFlag,
		configFlag,
		formatFlag,
		solverFlag,
		strategyFlag,
		roundingFlag,
		slotDurationFlag,
		cbcPathFlag,
		timeLimitFlag,
		logLevelFlag,
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log.SetLevel(cfg.Level())

	renderer, err := report.NewRenderer(report.Format(strings.ToLower(ctx.String(formatFlag.Name))))
	if err != nil {
		return err
	}

	// Extract input
	input, err := model.InputFromJson(ctx.String(fileFlag.Name))
	if err != nil {
		return fmt.Errorf("cannot parse input file: %w", err)
	}
	catalog, err := model.NewCatalog(input, model.WithSlotDuration(cfg.SlotDuration), model.WithRounding(cfg.RoundingPolicy()))
	if err != nil {
		return fmt.Errorf("cannot build catalog: %w", err)
	}

	// Initialize engines
	solver := solvers[cfg.Solver](cfg)
	timetabler := timetablers[cfg.Strategy](solver)
	log.WithFields(log.Fields{
		"solver":   cfg.Solver,
		"strategy": cfg.Strategy,
	}).Info("building timetable")

	// Build timetable
	outcome, err := timetabler.Build(catalog)
	if err != nil {
		log.WithField("outcome", outcome.Status).Error("timetable construction failed")
		if renderErr := write(ctx, renderer, outcome); renderErr != nil {
			log.Error(renderErr)
		}
		return fmt.Errorf("an error occurred during timetable construction: %w", err)
	}

	if err := write(ctx, renderer, outcome); err != nil {
		return err
	}
	log.Info(report.Summary(outcome))

	if outcome.Status != ilp.StatusOptimal {
		return cli.Exit("", exitInfeasible)
	} else if !timetabler.Verify(outcome.Result, catalog) {
		return cli.Exit("timetable verification failed", exitVerificationFailed)
	}
	return cli.Exit("", exitOptimal)
}

// loadConfig layers flags over environment over config file over defaults
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	v := config.New()
	for _, flag := range []cli.Flag{solverFlag, strategyFlag, roundingFlag, slotDurationFlag, cbcPathFlag, timeLimitFlag, logLevelFlag} {
		bind(ctx, v, flag.Names()[0])
	}
	return config.LoadConfig(v, ctx.String(configFlag.Name))
}

func bind(ctx *cli.Context, v *viper.Viper, name string) {
	if ctx.IsSet(name) {
		v.Set(name, ctx.Value(name))
	}
}

func write(ctx *cli.Context, renderer report.Renderer, outcome model.Outcome) error {
	var writer io.Writer = os.Stdout
	if out := ctx.String(outFlag.Name); out != "" {
		file, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer file.Close()
		writer = file
		color.NoColor = true
	}
	return renderer.Render(writer, outcome)
}
