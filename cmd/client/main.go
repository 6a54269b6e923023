package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oksasatya/template-marketplace/pkg/client"
)

const usage = `usage: client [-api URL] [-cache FILE] <command> [flags]

commands:
  register -first NAME -last NAME -email EMAIL -password PASS
  login    -email EMAIL -password PASS
  whoami
  onboard  key=value ...        (comma separates list values, e.g. targetPlatforms=react,vue)
  social   provider=url ...     (empty url removes the link)
  logout
`

func main() {
	api := flag.String("api", envOr("MARKETPLACE_API", "http://localhost:5000"), "account API base URL")
	cache := flag.String("cache", client.DefaultCachePath(), "session cache file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := client.NewSession(client.New(*api), client.NewSessionCache(*cache))
	if err := run(ctx, s, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, s *client.Session, cmd string, args []string) error {
	switch cmd {
	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		var in client.RegisterRequest
		fs.StringVar(&in.FirstName, "first", "", "first name")
		fs.StringVar(&in.LastName, "last", "", "last name")
		fs.StringVar(&in.Email, "email", "", "email")
		fs.StringVar(&in.Password, "password", "", "password")
		_ = fs.Parse(args)
		p, err := s.Register(ctx, in)
		if err != nil {
			return err
		}
		return printProfile(p)
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "email")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)
		p, err := s.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		if err := printProfile(p); err != nil {
			return err
		}
		if s.NeedsOnboarding() {
			fmt.Println("next: finish onboarding with `client onboard ...`")
		}
		return nil
	case "whoami":
		p, err := s.Require("whoami")
		if err != nil {
			return err
		}
		return printProfile(p)
	case "onboard":
		p, err := s.SubmitOnboarding(ctx, parseAnswers(args))
		if err != nil {
			return err
		}
		return printProfile(p)
	case "social":
		links, err := parsePairs(args)
		if err != nil {
			return err
		}
		p, err := s.UpdateSocialLinks(ctx, links)
		if err != nil {
			return err
		}
		return printProfile(p)
	case "logout":
		err := s.Logout(ctx)
		fmt.Println("logged out")
		if errors.Is(err, client.ErrNetwork) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// parseAnswers turns key=value args into an onboarding body. Values with a
// comma become lists.
func parseAnswers(args []string) client.Answers {
	out := client.Answers{}
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			continue
		}
		if strings.Contains(v, ",") {
			out[k] = strings.Split(v, ",")
			continue
		}
		out[k] = v
	}
	return out
}

func parsePairs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected provider=url, got %q", a)
		}
		out[k] = v
	}
	return out, nil
}

func describe(err error) string {
	var lre *client.LoginRequiredError
	var apiErr *client.APIError
	switch {
	case errors.As(err, &lre):
		return "please log in first: client login -email ... -password ..."
	case errors.As(err, &apiErr):
		msg := apiErr.Error()
		for f, m := range apiErr.Fields {
			msg += fmt.Sprintf("\n  %s: %s", f, m)
		}
		return msg
	case errors.Is(err, client.ErrNetwork):
		return client.ErrNetwork.Error()
	default:
		return err.Error()
	}
}

func printProfile(p client.Profile) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
