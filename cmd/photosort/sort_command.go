package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"photosort/internal/sorting"
)

func newSortCommand(ctx *commandContext) *cobra.Command {
	var (
		batchID       string
		caseNumber    string
		procedure     string
		surgeryDate   string
		imageType     string
		angle         string
		consentStatus string
		consentType   string
		firstName     string
		lastName      string
		dob           string
		surgeon       string
	)

	cmd := &cobra.Command{
		Use:   "sort <filename>",
		Short: "Sort one image from the active batch into the archive",
		Long: "Sort copies one image into its case-structured destination, verifies the\n" +
			"copy byte for byte against the scan-time hash, and records the outcome in\n" +
			"the batch manifest. The source file is never modified or deleted here.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			lock, err := ctx.acquireLock()
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			store, err := ctx.manifestStore()
			if err != nil {
				return err
			}
			m, err := ctx.resolveManifest(store, batchID)
			if err != nil {
				return err
			}

			filename := args[0]
			if m.Image(filename) == nil {
				return fmt.Errorf("%s is not part of batch %s", filename, m.ID)
			}

			prefill := func(value *string, fallback string) {
				if strings.TrimSpace(*value) == "" {
					*value = fallback
				}
			}
			prefill(&procedure, cfg.Defaults.Procedure)
			prefill(&imageType, cfg.Defaults.ImageType)
			prefill(&angle, cfg.Defaults.Angle)
			prefill(&consentStatus, cfg.Defaults.ConsentStatus)
			prefill(&surgeon, cfg.Defaults.Surgeon)

			patients, err := ctx.openRecords()
			if err != nil {
				return err
			}
			defer func() { _ = patients.Close() }()

			engine := sorting.NewEngine(store, patients, logger)
			opts := sorting.Options{
				Request: sorting.Request{
					CaseNumber:       caseNumber,
					ConsentStatus:    sorting.ConsentStatus(consentStatus),
					ConsentType:      sorting.ConsentType(consentType),
					ProcedureType:    procedure,
					SurgeryDate:      surgeryDate,
					ImageType:        imageType,
					Angle:            angle,
					OriginalFilename: filename,
				},
				SourcePath:      filepath.Join(m.SourcePath, filename),
				DestinationRoot: cfg.Paths.DestinationRoot,
				Manifest:        m,
			}
			if strings.TrimSpace(firstName) != "" || strings.TrimSpace(lastName) != "" {
				opts.Patient = &sorting.PatientDetails{
					FirstName: firstName,
					LastName:  lastName,
					DOB:       dob,
					Surgeon:   surgeon,
				}
			}

			result, err := engine.SortImage(cmd.Context(), opts)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			switch {
			case result.Conflict:
				fmt.Fprintln(out, renderStatusLine("Conflict", statusWarn,
					fmt.Sprintf("%s already exists; skip the image or adjust metadata", result.DestinationPath), colorize))
				return err
			case result.IntegrityMismatch:
				fmt.Fprintln(out, renderStatusLine("Integrity", statusError,
					"copied bytes did not match the source hash; nothing was written", colorize))
				return err
			case err != nil:
				return err
			}

			fmt.Fprintln(out, renderStatusLine("Sorted", statusOK, result.DestinationPath, colorize))
			fmt.Fprintln(out, renderStatusLine("Verified", statusOK, shortHash(result.DestinationHash), colorize))
			if result.PatientRecordSaved {
				fmt.Fprintln(out, renderStatusLine("Patient", statusOK,
					fmt.Sprintf("record created for case %s", caseNumber), colorize))
			}
			if m.Status.Active() && m.AllProcessed() {
				fmt.Fprintln(out, renderStatusLine("Batch", statusInfo,
					"all images processed; run `photosort cleanup` when ready", colorize))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "Batch id (defaults to the active batch)")
	cmd.Flags().StringVar(&caseNumber, "case", "", "Patient case number")
	cmd.Flags().StringVar(&procedure, "procedure", "", "Procedure type")
	cmd.Flags().StringVar(&surgeryDate, "date", "", "Surgery date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&imageType, "type", "", "Image type (pre_op, post_op, ...)")
	cmd.Flags().StringVar(&angle, "angle", "", "Photo angle (front, side, ...)")
	cmd.Flags().StringVar(&consentStatus, "consent", "", "Consent status (consent or no_consent)")
	cmd.Flags().StringVar(&consentType, "consent-type", "", "Consent type (hipaa or social_media), required with --consent consent")
	cmd.Flags().StringVar(&firstName, "first-name", "", "Patient first name (creates a record when new)")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Patient last name")
	cmd.Flags().StringVar(&dob, "dob", "", "Patient date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&surgeon, "surgeon", "", "Surgeon id for the patient record")
	_ = cmd.MarkFlagRequired("case")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}
