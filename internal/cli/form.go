package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/dexter/internal/form"
	"github.com/rshade/dexter/internal/logging"
)

// newFormCmd creates the form command group.
func newFormCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "form",
		Short: "Check registration form submissions",
	}
	cmd.AddCommand(NewFormValidateCmd())
	return cmd
}

// formFieldError is one failed field in the JSON output.
type formFieldError struct {
	Field   form.Field `json:"field"`
	Message string     `json:"message"`
}

// formValidateOutput is the JSON document of form validate.
type formValidateOutput struct {
	Valid            bool             `json:"valid"`
	Errors           []formFieldError `json:"errors,omitempty"`
	PasswordStrength string           `json:"password_strength"`
	Record           *form.Record     `json:"record,omitempty"`
}

// NewFormValidateCmd validates a submission read from a YAML file.
func NewFormValidateCmd() *cobra.Command {
	var picture string
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a registration form submission",
		Long: `Validate a registration form submission stored as YAML.

Every field is checked and all failures are reported in form order. The exit
code is 3 when the submission is invalid.`,
		Example: `  dexter form validate signup.yaml
  dexter form validate signup.yaml --picture avatar.png --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			sub, err := readSubmission(args[0])
			if err != nil {
				return err
			}

			var uploadErr error
			if picture != "" {
				sub.Picture, uploadErr = form.PictureDataURL(picture)
			}

			validateErr := sub.Validate()
			var verrs form.ValidationErrors
			switch {
			case errors.As(validateErr, &verrs):
			case validateErr != nil:
				return validateErr
			}
			if uploadErr != nil {
				if verrs == nil {
					verrs = make(form.ValidationErrors)
				}
				verrs[form.FieldPicture] = uploadErr.Error()
			}

			log := logging.FromContext(cmd.Context())
			doc := formValidateOutput{
				Valid:            len(verrs) == 0,
				PasswordStrength: form.PasswordStrength(sub.Password).String(),
			}
			for _, f := range verrs.Fields() {
				doc.Errors = append(doc.Errors, formFieldError{Field: f, Message: verrs[f]})
			}
			if doc.Valid {
				rec := form.NewStore().Add(sub)
				doc.Record = &rec
			}
			log.Debug().Ctx(cmd.Context()).
				Str("component", "cli").
				Str("operation", "form_validate").
				Bool("valid", doc.Valid).
				Int("errors", len(doc.Errors)).
				Msg("submission checked")

			if err := render(cmd.OutOrStdout(), format, doc.Errors, doc, func() error {
				return renderFormResult(cmd, doc)
			}); err != nil {
				return err
			}
			if !doc.Valid {
				return verrs
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&picture, "picture", "", "PNG or JPEG file to attach as the picture")
	return cmd
}

func readSubmission(path string) (form.Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return form.Submission{}, fmt.Errorf("reading submission: %w", err)
	}
	var sub form.Submission
	if err := yaml.Unmarshal(data, &sub); err != nil {
		return form.Submission{}, fmt.Errorf("parsing submission %s: %w", path, err)
	}
	return sub, nil
}

func renderFormResult(cmd *cobra.Command, doc formValidateOutput) error {
	w := cmd.OutOrStdout()
	if doc.Valid {
		_, err := fmt.Fprintf(w, "valid\nid: %s\npassword strength: %s\n", doc.Record.ID, doc.PasswordStrength)
		return err
	}
	if _, err := fmt.Fprintln(w, "invalid"); err != nil {
		return err
	}
	for _, fe := range doc.Errors {
		if _, err := fmt.Fprintf(w, "  %-16s %s\n", string(fe.Field)+":", fe.Message); err != nil {
			return err
		}
	}
	return nil
}
