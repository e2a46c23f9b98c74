package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spigell/skillbuddy/internal/matching"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Find job postings that match your profile",
	Run: func(cmd *cobra.Command, _ []string) {
		runJobs(cmd)
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)

	jobsCmd.Flags().StringP("location", "l", "", "job location, empty for anywhere")
	jobsCmd.Flags().IntP("count", "n", 10, "number of postings to fetch")
	jobsCmd.Flags().BoolP("fresh", "f", false, "ignore cached search results")
	jobsCmd.Flags().BoolP("recommend", "r", false, "suggest roles and companies instead of searching postings")
}

func runJobs(cmd *cobra.Command) {
	ctx := context.Background()
	e := setup(ctx)

	location, _ := cmd.Flags().GetString("location")
	count, _ := cmd.Flags().GetInt("count")
	fresh, _ := cmd.Flags().GetBool("fresh")
	recommend, _ := cmd.Flags().GetBool("recommend")

	p := e.loadProfile(ctx)

	if recommend {
		recs, err := matching.NewRecommender(e.generator, e.logger).Recommend(ctx, p, e.role(), location)
		if err != nil {
			e.fatal("recommending roles", err)
		}
		printRecommendations(recs)
		return
	}

	search := e.jobSearch()
	defer search.Close()

	matcher := matching.NewMatcher(e.logger,
		matching.NewAgent(e.generator, search, fresh, e.logger),
		matching.NewDirect(e.generator, search, fresh, e.logger),
	)

	result, err := matcher.Match(ctx, matching.Request{
		Profile:    p,
		TargetRole: e.role(),
		Location:   location,
		Count:      count,
	})
	if err != nil {
		e.fatal("matching jobs", err)
	}

	if len(result.Matches) == 0 {
		fmt.Println("No matching postings found.")
	}
	for i, m := range result.Matches {
		fmt.Printf("\n%d. %s at %s (%s)\n", i+1, m.Posting.Title, m.Posting.CompanyName, m.Posting.Location)
		fmt.Printf("   Match: %.0f%%\n", m.Score*100)
		if len(m.MissingSkills) > 0 {
			fmt.Printf("   Missing skills: %s\n", strings.Join(m.MissingSkills, ", "))
		}
		if m.Posting.ApplyLink != "" {
			fmt.Printf("   Apply: %s\n", m.Posting.ApplyLink)
		}
	}
	fmt.Printf("\nRemaining search quota: %d\n", search.Remaining())
}

func printRecommendations(recs *matching.Recommendations) {
	printList("Recommended roles", recs.RecommendedRoles)
	if len(recs.MatchingCompanies) > 0 {
		fmt.Println("Companies that fit:")
		for _, c := range recs.MatchingCompanies {
			fmt.Printf("  - %s: %s\n", c.CompanyType, c.Reason)
			if len(c.ExampleCompanies) > 0 {
				fmt.Printf("    e.g. %s\n", strings.Join(c.ExampleCompanies, ", "))
			}
		}
	}
	printList("Keywords to add", recs.KeywordsToAdd)
	fmt.Printf("Domain fit: %s\n", recs.DomainFit)
}
