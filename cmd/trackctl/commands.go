package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/Atul17-std/pokemon-tracker/internal/progress"
	"github.com/Atul17-std/pokemon-tracker/internal/report"
)

func newSummaryCmd(opts *options) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print CGPA, credits, badges, and mastery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := language.Parse(lang)
			if err != nil {
				return fmt.Errorf("invalid --lang: %w", err)
			}
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()
			return report.Text(cmd.OutOrStdout(), s.tracker.Summary(), tag)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "en", "language for number formatting")
	return cmd
}

func newAddCmd(opts *options) *cobra.Command {
	var (
		semester int
		code     string
		name     string
		grade    string
		credits  int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a grade for a course",
		Long:  "Record a grade for a course. Name and credits default to the catalog entry for the code.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if tmpl, ok := s.catalog.Template(semester, code); ok {
				if name == "" {
					name = tmpl.Name
				}
				if credits == 0 {
					credits = tmpl.Credits
				}
			}
			g := progress.GradeNone
			if grade != "" {
				if g, err = progress.ParseGrade(grade); err != nil {
					return err
				}
			}

			res, err := s.tracker.AddCourse(cmd.Context(), progress.CourseInput{
				Semester: semester,
				Code:     code,
				Name:     name,
				Grade:    g,
				Credits:  credits,
			})
			if err != nil {
				return err
			}
			printNotices(cmd, res)
			fmt.Fprintln(cmd.OutOrStdout(), s.tracker.TrainingLog()[0].Message)
			fmt.Fprintf(cmd.OutOrStdout(), "CGPA %s, %d credits earned\n", res.Summary.CGPA, res.Summary.CreditsEarned)
			return nil
		},
	}
	cmd.Flags().IntVarP(&semester, "semester", "s", 0, "semester number")
	cmd.Flags().StringVarP(&code, "code", "c", "", "course code")
	cmd.Flags().StringVarP(&name, "name", "n", "", "course name")
	cmd.Flags().StringVarP(&grade, "grade", "g", "", "letter grade (S, A-F); empty means in progress")
	cmd.Flags().IntVar(&credits, "credits", 0, "credit weight")
	_ = cmd.MarkFlagRequired("semester")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func newToggleCmd(opts *options) *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "toggle SEMESTER CODE INDEX",
		Short: "Mark a course sub-topic as completed",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			semester, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("semester must be a number: %w", err)
			}
			index, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}

			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.tracker.ToggleSubTopic(cmd.Context(), semester, args[1], index, !undo)
			if err != nil {
				return err
			}
			printNotices(cmd, res)
			fmt.Fprintln(cmd.OutOrStdout(), s.tracker.TrainingLog()[0].Message)
			return nil
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "mark the sub-topic incomplete instead")
	return cmd
}

func newProfileCmd(opts *options) *cobra.Command {
	var p progress.Profile
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update trainer settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			current := s.tracker.Record().Profile
			if !cmd.Flags().Changed("enrollment") {
				p.EnrollmentNo = current.EnrollmentNo
			}
			if !cmd.Flags().Changed("specialization") {
				p.Specialization = current.Specialization
			}
			if !cmd.Flags().Changed("name") {
				p.Name = current.Name
			}

			res, err := s.tracker.UpdateProfile(cmd.Context(), p)
			if err != nil {
				return err
			}
			printNotices(cmd, res)
			fmt.Fprintln(cmd.OutOrStdout(), s.tracker.TrainingLog()[0].Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "trainer name")
	cmd.Flags().StringVar(&p.EnrollmentNo, "enrollment", "", "enrollment number")
	cmd.Flags().StringVar(&p.Specialization, "specialization", "", "specialization")
	return cmd
}

func newCatalogCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the catalog courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d credits)\n", s.catalog.Name, s.catalog.TotalCredits())
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, n := range s.catalog.SemesterNumbers() {
				fmt.Fprintf(tw, "\nSemester %d\t\t\t\n", n)
				for _, c := range s.catalog.Semesters[n] {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.Code, c.Name, c.Credits, c.Category)
				}
			}
			return tw.Flush()
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Write the transcript as an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			if err := report.Transcript(f, s.tracker.Record(), s.catalog.Catalog); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transcript written to %s\n", args[0])
			return nil
		},
	}
}
