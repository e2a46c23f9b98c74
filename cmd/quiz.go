package cmd

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/interview"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a five question quiz built from your profile",
	Run: func(_ *cobra.Command, _ []string) {
		runQuiz()
	},
}

func init() {
	rootCmd.AddCommand(quizCmd)
}

func runQuiz() {
	ctx := context.Background()
	e := setup(ctx)

	p := e.loadProfile(ctx)
	quiz, err := interview.NewQuizMaker(e.generator, e.logger).Generate(ctx, p)
	if err != nil {
		e.fatal("generating quiz", err)
	}

	chosen := make(map[int]string, len(quiz.Questions))
	for _, q := range quiz.Questions {
		items := make([]string, 0, len(q.Options))
		for _, opt := range q.Options {
			items = append(items, fmt.Sprintf("%s. %s", opt.Label, opt.Text))
		}

		selector := promptui.Select{
			Label: fmt.Sprintf("Q%d. %s", q.Number, q.Question),
			Items: items,
		}
		idx, _, err := selector.Run()
		if err != nil {
			e.logger.Info("exiting", zap.Error(err))
			return
		}
		chosen[q.Number] = q.Options[idx].Label
	}

	result := quiz.Grade(chosen)
	fmt.Printf("\nScore: %d/%d\n", result.Score, result.Total)
	for i, item := range result.Items {
		mark := "wrong"
		if item.IsCorrect {
			mark = "correct"
		}
		fmt.Printf("Q%d: %s (you chose %s, answer %s)\n  %s\n",
			item.Number, mark, item.Chosen, item.Correct, quiz.Questions[i].Explanation)
	}
}
