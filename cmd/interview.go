package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/ai"
	"github.com/spigell/skillbuddy/internal/interview"
)

const (
	PromptTypeAnswer  = "Type an answer"
	PromptAudioAnswer = "Answer with an audio file"
	PromptSkip        = "Skip this question"
	PromptQuit        = "Quit"
	PromptRetry       = "Retry evaluation"
)

var errQuit = errors.New("quit requested")

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interactive mock interview",
	Run: func(cmd *cobra.Command, _ []string) {
		runInterview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().StringP("mode", "m", "", "interview mode: live (7 questions with follow-ups) or standard (5 questions)")
	interviewCmd.Flags().Int("max-clarifications", 0, "follow-ups allowed per question before the answer is accepted (0 means unlimited)")

	viper.BindPFlag("interview.mode", interviewCmd.Flags().Lookup("mode"))
}

// clarificationLimit prefers an explicit --max-clarifications, including 0.
func clarificationLimit(cmd *cobra.Command, configured int) int {
	if !cmd.Flags().Changed("max-clarifications") {
		return configured
	}
	n, err := cmd.Flags().GetInt("max-clarifications")
	if err != nil {
		return configured
	}
	return n
}

func runInterview(cmd *cobra.Command) {
	ctx := context.Background()
	e := setup(ctx)

	mode, err := interview.ParseMode(e.config.Interview.Mode)
	if err != nil {
		e.logger.Fatal("parsing interview mode", zap.Error(err))
	}

	p := e.loadProfile(ctx)
	session, err := interview.NewSession(p, interview.SessionConfig{
		Mode:              mode,
		TargetRole:        e.role(),
		MaxClarifications: clarificationLimit(cmd, e.config.Interview.MaxClarifications),
	}, interview.SessionDeps{
		Generator:   interview.NewGenerator(e.generator, e.logger),
		Checker:     interview.NewClarityGate(e.generator, e.logger),
		Transcriber: interview.NewTranscriber(e.generator, e.logger),
		Evaluator:   interview.NewEvaluator(e.generator, e.logger),
		Logger:      e.logger,
	})
	if err != nil {
		e.logger.Fatal("creating interview session", zap.Error(err))
	}

	if err := session.Start(ctx); err != nil {
		e.fatal("starting interview", err)
	}

	for {
		question, ok := session.Current()
		if !ok {
			break
		}

		total := len(session.Snapshot().Questions)
		fmt.Printf("\nQuestion %d of %d [%s]\n%s\n", question.Number, total, question.Category, question.Text)

		if err := askQuestion(ctx, session); err != nil {
			if errors.Is(err, errQuit) {
				e.logger.Info("exiting", zap.String("reason", "quit requested"), zap.String("session_id", session.ID()))
				return
			}
			e.logger.Fatal("exiting", zap.Error(err))
		}
	}

	for session.State() == interview.StateEvaluating {
		retry := promptui.Select{
			Label: "Evaluation failed. What next?",
			Items: []string{PromptRetry, PromptQuit},
		}
		_, action, err := retry.Run()
		if err != nil || action == PromptQuit {
			e.logger.Info("exiting", zap.String("reason", "evaluation abandoned"))
			return
		}

		if _, err := session.Evaluate(ctx); err != nil {
			fmt.Println(ai.Describe(err))
		}
	}

	if result := session.Result(); result != nil {
		printEvaluation(result)
	}
}

// askQuestion keeps asking until the current question is answered, skipped or
// the user quits. Follow-ups stay on the same question.
func askQuestion(ctx context.Context, session *interview.Session) error {
	actions := promptui.Select{
		Label: "How do you want to answer?",
		Items: []string{PromptTypeAnswer, PromptAudioAnswer, PromptSkip, PromptQuit},
	}

	for {
		_, action, err := actions.Run()
		if err != nil {
			return err
		}

		var outcome *interview.TurnOutcome
		switch action {
		case PromptQuit:
			return errQuit
		case PromptSkip:
			outcome, err = session.Skip(ctx)
		case PromptTypeAnswer:
			text, perr := (&promptui.Prompt{Label: "Your answer"}).Run()
			if perr != nil {
				return perr
			}
			outcome, err = session.Submit(ctx, interview.Submission{Text: text})
		case PromptAudioAnswer:
			path, perr := (&promptui.Prompt{Label: "Path to the audio file"}).Run()
			if perr != nil {
				return perr
			}
			audio, rerr := os.ReadFile(strings.TrimSpace(path))
			if rerr != nil {
				fmt.Printf("cannot read %s: %v\n", path, rerr)
				continue
			}
			note, perr := (&promptui.Prompt{Label: "Optional typed note (used if transcription fails)"}).Run()
			if perr != nil {
				return perr
			}
			outcome, err = session.Submit(ctx, interview.Submission{Audio: audio, Text: note})
		default:
			return fmt.Errorf("invalid action: %s", action)
		}

		if outcome != nil {
			printOutcome(outcome)
		}

		var evalErr *interview.EvaluationError
		switch {
		case err == nil:
		case errors.Is(err, interview.ErrEmptyAnswer):
			fmt.Println("The answer is empty, please try again.")
			continue
		case errors.As(err, &evalErr):
			fmt.Println(ai.Describe(err))
			return nil
		default:
			return err
		}

		if outcome.Accepted {
			return nil
		}
	}
}

func printOutcome(outcome *interview.TurnOutcome) {
	if outcome.TranscriptionFailed {
		fmt.Println("The recording could not be transcribed, the answer was recorded as an error.")
	} else if outcome.Transcript != "" {
		fmt.Printf("Transcript: %s\n", outcome.Transcript)
	}

	if !outcome.Accepted {
		fmt.Printf("Follow-up: %s\n", outcome.FollowUp)
		return
	}
	if outcome.Acknowledgement != "" {
		fmt.Println(outcome.Acknowledgement)
	}
}

func printEvaluation(result *interview.Evaluation) {
	fmt.Printf("\nOverall score: %d/10\n", result.OverallScore)
	fmt.Printf("Communication: %d/10\n", result.CommunicationScore)
	printList("Strengths", result.Strengths)
	printList("Areas to improve", result.ImprovementAreas)
	printList("Weak topics", result.WeakTopics)
	printList("Suggestions", result.Suggestions)

	for _, answer := range result.Answers {
		fmt.Printf("\nQ%d: %d/10\n", answer.QuestionNumber, answer.Score)
		printList("  Strengths", answer.Strengths)
		printList("  Improvements", answer.Improvements)
		printList("  Missing points", answer.MissingPoints)
	}

	if soft := result.SoftSkills; soft != nil {
		fmt.Printf("\nSoft skills: clarity %d/10, structure %d/10, confidence %d/10\n",
			soft.CommunicationClarity, soft.Structure, soft.Confidence)
		if soft.Feedback != "" {
			fmt.Println(soft.Feedback)
		}
	}
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}
