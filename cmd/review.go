package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/interview"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Get feedback on a recorded answer",
	Run: func(cmd *cobra.Command, _ []string) {
		runReview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringP("question", "q", "", "the question that was answered")
	reviewCmd.Flags().String("audio", "", "audio recording of the answer")
	reviewCmd.Flags().String("video", "", "video recording of the answer")
	reviewCmd.Flags().String("transcript", "", "optional transcript of the answer")
}

func runReview(cmd *cobra.Command) {
	ctx := context.Background()
	e := setup(ctx)

	question, _ := cmd.Flags().GetString("question")
	audioPath, _ := cmd.Flags().GetString("audio")
	videoPath, _ := cmd.Flags().GetString("video")
	transcript, _ := cmd.Flags().GetString("transcript")

	if question == "" {
		e.logger.Fatal("no question", zap.Error(errors.New("--question is required")))
	}

	rec := interview.Recording{Transcript: transcript}
	if audioPath != "" {
		rec.Audio = readMedia(e, audioPath)
		rec.AudioMIME = interview.DetectMedia(rec.Audio, "audio/", "audio/wav")
	}
	if videoPath != "" {
		rec.Video = readMedia(e, videoPath)
		rec.VideoMIME = interview.DetectMedia(rec.Video, "video/", "video/mp4")
	}

	p := e.optionalProfile(ctx)
	feedback, err := interview.NewReviewer(e.generator, e.logger).Review(ctx, question, rec, p)
	if err != nil {
		e.fatal("reviewing recording", err)
	}

	fmt.Printf("Answer quality: %s\n", feedback.AnswerQuality)
	if d := feedback.Delivery; d.FillerCount != nil || d.Tone != nil || d.VisualObservation != nil {
		fmt.Println("Delivery:")
		if d.FillerCount != nil {
			fmt.Printf("  Filler words: %d\n", *d.FillerCount)
		}
		if d.Tone != nil {
			fmt.Printf("  Tone: %s\n", *d.Tone)
		}
		if d.VisualObservation != nil {
			fmt.Printf("  Visual: %s\n", *d.VisualObservation)
		}
	}
	fmt.Printf("Tips: %s\n", feedback.ImprovementTips)
}

func readMedia(e *env, path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Fatal("reading recording", zap.String("path", path), zap.Error(err))
	}
	return data
}
