package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bigplans/backend/core"
	"github.com/bigplans/backend/core/task"
	"github.com/bigplans/backend/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errEmptyPassword = errors.New("password cannot be empty")
)

type commandLine struct {
	db       *sql.DB
	usrSvc   *user.Service
	taskSvc  *task.Service
	validate *validator.Validate
	out      io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "admin",
		Short:         "BigPlans administration commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.out)

	cmd.AddCommand(cli.migrateCmd())
	cmd.AddCommand(cli.addUserCmd())
	cmd.AddCommand(cli.resetPasswordCmd())
	cmd.AddCommand(cli.generateCmd())
	return cmd
}

// run executes the command line. args[0] is the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args[1:])
	return root.Execute()
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	return string(pwd), nil
}

// describeError renders validation errors field by field.
func describeError(err error, translator ut.Translator) string {
	switch verr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		msgs := make([]string, 0, len(verr))
		for _, fe := range verr {
			msgs = append(msgs, fe.Field()+": "+fe.Translate(translator))
		}
		return strings.Join(msgs, "; ")
	case *core.ValidationError:
		if len(verr.Fields) == 0 {
			return verr.Error()
		}
		msgs := make([]string, 0, len(verr.Fields))
		for _, fe := range verr.Fields {
			msgs = append(msgs, fe.Field+": "+fe.Error)
		}
		return strings.Join(msgs, "; ")
	}
	return err.Error()
}
