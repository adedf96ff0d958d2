package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"

	"github.com/brettboylen/post-index/models"
	"github.com/brettboylen/post-index/store"
)

const noMorePosts = "No more posts to display."

// Feeder inserts n generated posts and returns the accepted ones
type Feeder interface {
	Feed(n int) []models.Post
}

// Menu is the interactive console front-end of the store
type Menu struct {
	store  *store.Store
	feeder Feeder
	in     *bufio.Scanner
	out    io.Writer
	log    *logrus.Logger
}

// NewMenu creates a menu reading answers from in and writing to out
func NewMenu(postStore *store.Store, feeder Feeder, in io.Reader, out io.Writer, log *logrus.Logger) *Menu {
	return &Menu{
		store:  postStore,
		feeder: feeder,
		in:     bufio.NewScanner(in),
		out:    out,
		log:    log,
	}
}

// Run loops over the main menu until the user exits or input ends
func (m *Menu) Run() error {
	for {
		m.printf("\nMenu:\n")
		m.printf("1. Add Random Posts\n")
		m.printf("2. Get a Post by Year\n")
		m.printf("3. Get Posts in Year Range\n")
		m.printf("4. Get Most Viewed Post\n")
		m.printf("5. View Posts\n")
		m.printf("6. Exit\n")

		choice, err := m.prompt("Choose an option: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = m.addRandomPosts()
		case "2":
			err = m.getPost()
		case "3":
			err = m.postsInRange()
		case "4":
			m.mostViewed()
		case "5":
			err = m.viewPosts()
		case "6":
			m.printf("Exiting program.\n")
			return nil
		default:
			m.printf("Invalid choice, please try again.\n")
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) addRandomPosts() error {
	n, err := m.promptInt("How many posts do you want to generate? ")
	if err != nil {
		return err
	}
	if n < 0 {
		m.printf("Please enter a positive number.\n")
		return nil
	}

	for _, post := range m.feeder.Feed(n) {
		m.printf("Added Post: %s\n", formatPost(post))
	}
	return nil
}

func (m *Menu) getPost() error {
	year, err := m.promptInt("Enter the year to retrieve a post from: ")
	if err != nil {
		return err
	}
	month, err := m.promptInt("Enter the month (1-12) to retrieve a post from: ")
	if err != nil {
		return err
	}
	specific, err := m.prompt("Do you know a specific time for the post? (yes/no): ")
	if err != nil {
		return err
	}

	if strings.ToLower(specific) != "yes" {
		post, err := m.store.SampleByYearMonth(year, time.Month(month))
		if err != nil {
			m.log.WithError(err).Debug("Sample failed")
			m.printf("No posts found for the specified year and month.\n")
			return nil
		}
		m.printf("Retrieved Random Post: %s\n", formatPost(post))
		return nil
	}

	fields := make([]int, 0, 4)
	for _, label := range []string{"day of the month", "hour (0-23)", "minute (0-59)", "second (0-59)"} {
		value, err := m.promptInt(fmt.Sprintf("Enter the %s: ", label))
		if err != nil {
			return err
		}
		fields = append(fields, value)
	}

	if month < 1 || month > 12 || fields[0] < 1 || fields[0] > 31 ||
		fields[1] < 0 || fields[1] > 23 || fields[2] < 0 || fields[2] > 59 || fields[3] < 0 || fields[3] > 59 {
		m.printf("Invalid input. Please enter valid numerical values.\n")
		return nil
	}

	target := time.Date(year, time.Month(month), fields[0], fields[1], fields[2], fields[3], 0, time.UTC)
	// time.Date normalizes 31 February into March
	if target.Month() != time.Month(month) || target.Day() != fields[0] {
		m.printf("Invalid input. Please enter valid numerical values.\n")
		return nil
	}

	post, err := m.store.LookupByTimestamp(target)
	if err != nil {
		m.printf("No post found for the specified datetime.\n")
		return nil
	}
	m.printf("Retrieved Post: %s\n", formatPost(post))
	return nil
}

func (m *Menu) postsInRange() error {
	start, err := m.promptInt("Start Year (YYYY): ")
	if err != nil {
		return err
	}
	end, err := m.promptInt("End Year (YYYY): ")
	if err != nil {
		return err
	}

	posts, err := m.store.RangeByYear(start, end)
	if err != nil {
		m.printf("Start year must not be after end year.\n")
		return nil
	}
	m.printf("Posts in Range: %d\n", len(posts))
	m.printTable(posts)
	return nil
}

func (m *Menu) mostViewed() {
	post, err := m.store.PeekMostViewed()
	if err != nil {
		m.printf("Most Viewed Post: %s\n", noMorePosts)
		return
	}
	m.printf("Most Viewed Post: %s\n", formatPost(post))
}

func (m *Menu) viewPosts() error {
	for {
		m.printf("\nView Posts Options:\n")
		m.printf("1. View Posts from Highest to Lowest Views\n")
		m.printf("2. View Posts from Lowest to Highest Views\n")
		m.printf("3. Pop Least Viewed Post\n")
		m.printf("4. Back to Main Menu\n")

		choice, err := m.prompt("Choose an option: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			m.printDrained(m.store.DrainByPopularityDescending())
		case "2":
			m.printDrained(m.store.DrainByPopularityAscending())
		case "3":
			post, err := m.store.PopLeastViewed()
			if err != nil {
				m.printf("%s\n", noMorePosts)
				continue
			}
			m.printf("Least Viewed Post: %s\n", formatPost(post))
		case "4":
			return nil
		default:
			m.printf("Invalid choice, please try again.\n")
		}
	}
}

func (m *Menu) printDrained(posts []models.Post) {
	if len(posts) == 0 {
		m.printf("%s\n", noMorePosts)
		return
	}
	m.printTable(posts)
}

func (m *Menu) printTable(posts []models.Post) {
	t := table.NewWriter()
	t.SetOutputMirror(m.out)
	t.AppendHeader(table.Row{"Timestamp", "Content", "Author", "Views"})
	for _, post := range posts {
		t.AppendRow(table.Row{
			post.Timestamp.Format(time.DateTime),
			post.Content,
			post.Author,
			humanize.Comma(int64(post.Views)),
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func formatPost(post models.Post) string {
	return fmt.Sprintf("(%s, '%s', by %s, views: %s)",
		post.Timestamp.Format(time.DateTime), post.Content, post.Author, humanize.Comma(int64(post.Views)))
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

// prompt returns the next trimmed line; io.EOF once input is exhausted
func (m *Menu) prompt(question string) (string, error) {
	m.printf("%s", question)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

// promptInt re-asks until the answer parses as an integer
func (m *Menu) promptInt(question string) (int, error) {
	for {
		answer, err := m.prompt(question)
		if err != nil {
			return 0, err
		}
		value, err := strconv.Atoi(answer)
		if err == nil {
			return value, nil
		}
		m.printf("Invalid input. Please enter a whole number.\n")
	}
}

// IsEndOfInput reports whether Run stopped because the input ran out
func IsEndOfInput(err error) bool {
	return errors.Is(err, io.EOF)
}
