package trial

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udelar-dtx/dtx_backend/internal/service/patient"
	"github.com/udelar-dtx/dtx_backend/pkg/crypto"
	"github.com/udelar-dtx/dtx_backend/pkg/util/codes"
	"github.com/udelar-dtx/dtx_backend/pkg/util/password"
)

func newPatientService(e *env) (patient.Service, error) {
	cipher, err := crypto.NewFieldCipher(e.cfg.Authentication.EncryptionKey)
	if err != nil {
		return nil, err
	}
	hasher := password.NewHasher(password.FromCentralConfig(e.cfg.Password))
	return patient.New(e.db, e.db, e.clock, hasher, cipher, codes.FromCentralConfig(e.cfg.Trial), e.cfg.Trial.PhoneRegion), nil
}

func NewPatientAddCommand() *cobra.Command {
	var req patient.CreatePatientRequest

	cmd := &cobra.Command{
		Use:   "patient-add",
		Short: "Register a participant",
		Long: `Registers a participant. The PIN is printed once; it is stored only as a hash.
Without --pin a random PIN is generated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			svc, err := newPatientService(e)
			if err != nil {
				return err
			}
			res, err := svc.Create(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("failed to register patient: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Patient %s registered (%s, %s).\n", res.Patient.ID, res.Patient.Cohort, res.Patient.Arm)
			fmt.Fprintf(out, "PIN: %s\n", res.PIN)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ID, "id", "", "Patient id, e.g. P-014")
	cmd.Flags().StringVar(&req.Cohort, "cohort", "", "BREAST or PROSTATE")
	cmd.Flags().StringVar(&req.Arm, "arm", "", "EXPERIMENTAL (default) or CONTROL")
	cmd.Flags().StringVar(&req.PIN, "pin", "", "Numeric login PIN")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Contact phone, stored encrypted")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("cohort")

	return cmd
}

func NewEnrollCommand() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Start a participant's intervention today",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			svc, err := newPatientService(e)
			if err != nil {
				return err
			}
			enr, err := svc.Enroll(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to enroll %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Patient %s: %s\n", id, enr.Label())
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Patient id")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
