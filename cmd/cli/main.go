package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"cryptosense/internal/app"
	"cryptosense/internal/config"
	"cryptosense/internal/domain"
	"cryptosense/internal/notify"
	"cryptosense/pkg/tracing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type predictor interface {
	Predict(ctx context.Context, assetName string, horizon domain.Horizon) (*domain.Prediction, error)
	Sentiment(ctx context.Context, assetName string) (domain.Sentiment, []string)
}

var (
	loadEnvFunc     = godotenv.Load
	loadConfigFunc  = config.Load
	initTracerFunc  = tracing.InitTracer
	buildAppFunc    = app.Build
	openSessionFunc = openSession
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(14)
	buyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	sellStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	holdStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	noteStyle  = lipgloss.NewStyle().Faint(true)
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "cryptosense: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "cryptosense",
		Short:        "Sentiment-adjusted price predictions for crypto assets",
		SilenceUsage: true,
	}
	root.AddCommand(newPredictCmd(), newSentimentCmd(), newAssetsCmd())
	return root
}

func newPredictCmd() *cobra.Command {
	var asset, horizon string
	cmd := &cobra.Command{
		Use:   "predict [asset]",
		Short: "Predict the price at a horizon and recommend Buy, Sell or Hold",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closeFn, err := openSessionFunc(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			prediction, err := p.Predict(cmd.Context(), assetArg(args, asset), domain.ParseHorizon(horizon))
			if err != nil {
				return err
			}
			renderPrediction(cmd.OutOrStdout(), prediction)
			return nil
		},
	}
	cmd.Flags().StringVarP(&asset, "asset", "a", "", "asset name or symbol (default Bitcoin)")
	cmd.Flags().StringVarP(&horizon, "horizon", "t", string(domain.HorizonShort), "prediction horizon (1h, 1d, 1w)")
	return cmd
}

func newSentimentCmd() *cobra.Command {
	var asset string
	cmd := &cobra.Command{
		Use:   "sentiment [asset]",
		Short: "Show news, description and combined sentiment for an asset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closeFn, err := openSessionFunc(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			s, notes := p.Sentiment(cmd.Context(), assetArg(args, asset))
			renderSentiment(cmd.OutOrStdout(), s, notes)
			return nil
		},
	}
	cmd.Flags().StringVarP(&asset, "asset", "a", "", "asset name or symbol (default Bitcoin)")
	return cmd
}

func newAssetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assets",
		Short: "List supported assets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, titleStyle.Render("Supported assets"))
			for _, a := range domain.Catalog {
				fmt.Fprintf(w, "%s %s\n", labelStyle.Render(a.Name), a.Symbol)
			}
		},
	}
}

// assetArg prefers the positional argument over --asset.
func assetArg(args []string, flag string) string {
	switch {
	case len(args) > 0:
		return args[0]
	case flag != "":
		return flag
	default:
		return domain.FallbackAsset.Name
	}
}

// openSession builds the full component graph. The returned func flushes
// tracing and must be called once the command finishes.
func openSession(ctx context.Context) (predictor, func(), error) {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()
	log.SetLevel(config.ParseLogLevel(cfg.LogLevel))

	tp, tracer, err := initTracerFunc(ctx, tracing.DefaultServiceName+"-cli")
	if err != nil {
		return nil, nil, fmt.Errorf("init tracer: %w", err)
	}
	a := buildAppFunc(ctx, cfg, tracer, notify.Default())
	return a.Predictions, func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("error shutting down tracer provider", "err", err)
		}
	}, nil
}

func renderPrediction(w io.Writer, p *domain.Prediction) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%s) %s", p.Asset.Name, p.Quote.Symbol, p.Result.Horizon)))
	fmt.Fprintf(w, "%s $%.2f\n", labelStyle.Render("Current"), p.Quote.Price)
	fmt.Fprintf(w, "%s $%.2f\n", labelStyle.Render("Predicted"), p.Result.PredictedPrice)
	fmt.Fprintf(w, "%s %+.3f\n", labelStyle.Render("Sentiment"), p.Sentiment.Combined)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Recommendation"), recommendationStyle(p.Result.Recommendation).Render(string(p.Result.Recommendation)))
	renderNotes(w, p.Notes)
}

func renderSentiment(w io.Writer, s domain.Sentiment, notes []string) {
	fmt.Fprintln(w, titleStyle.Render(s.Asset+" sentiment"))
	fmt.Fprintf(w, "%s %+.3f\n", labelStyle.Render("News"), s.News)
	fmt.Fprintf(w, "%s %+.3f\n", labelStyle.Render("Description"), s.Description)
	fmt.Fprintf(w, "%s %+.3f\n", labelStyle.Render("Combined"), s.Combined)
	renderNotes(w, notes)
}

func renderNotes(w io.Writer, notes []string) {
	if len(notes) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, n := range notes {
		fmt.Fprintln(w, noteStyle.Render("- "+strings.TrimSpace(n)))
	}
}

func recommendationStyle(r domain.Recommendation) lipgloss.Style {
	switch r {
	case domain.RecommendationBuy:
		return buyStyle
	case domain.RecommendationSell:
		return sellStyle
	default:
		return holdStyle
	}
}
