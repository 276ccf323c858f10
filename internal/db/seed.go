package db

import (
	"context"
	"fmt"

	"github.com/denticare/clinic-ledger/internal/models"
	"github.com/denticare/clinic-ledger/internal/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var baseServices = []models.Service{
	{Name: "Consultation", BasePrice: decimal.New(30000, -2), IsVATApplicable: false, VATRate: pricing.DefaultVATRate},
	{Name: "Oral Prophylaxis", BasePrice: decimal.New(50000, -2), IsVATApplicable: true, VATRate: pricing.DefaultVATRate},
	{Name: "Tooth Extraction", BasePrice: decimal.New(80000, -2), IsVATApplicable: true, VATRate: pricing.DefaultVATRate},
	{Name: "Composite Filling", BasePrice: decimal.New(120000, -2), IsVATApplicable: true, VATRate: pricing.DefaultVATRate},
}

// Seed inserts development data. Running it again changes nothing.
func Seed(ctx context.Context, gdb *gorm.DB) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range baseServices {
			svc := s
			if err := tx.Where("name = ?", svc.Name).FirstOrCreate(&svc).Error; err != nil {
				return fmt.Errorf("seed service %q: %w", svc.Name, err)
			}
		}

		frontDesk := models.Staff{FirstName: "Carmen", LastName: "Villanueva", Role: "receptionist"}
		if err := tx.Where("first_name = ? AND last_name = ?", frontDesk.FirstName, frontDesk.LastName).
			FirstOrCreate(&frontDesk).Error; err != nil {
			return fmt.Errorf("seed staff: %w", err)
		}
		dentistStaff := models.Staff{FirstName: "Ramon", MiddleName: "Aquino", LastName: "Santos", Role: "dentist"}
		if err := tx.Where("first_name = ? AND last_name = ?", dentistStaff.FirstName, dentistStaff.LastName).
			FirstOrCreate(&dentistStaff).Error; err != nil {
			return fmt.Errorf("seed dentist staff: %w", err)
		}
		dentist := models.Dentist{StaffID: dentistStaff.ID, LicenseNum: "PRC-0104521"}
		if err := tx.Omit("Staff").Where("staff_id = ?", dentist.StaffID).FirstOrCreate(&dentist).Error; err != nil {
			return fmt.Errorf("seed dentist: %w", err)
		}

		patient := models.Patient{FirstName: "Liza", LastName: "Mendoza", Sex: "F", ContactNumber: "09171234567"}
		if err := tx.Where("first_name = ? AND last_name = ?", patient.FirstName, patient.LastName).
			FirstOrCreate(&patient).Error; err != nil {
			return fmt.Errorf("seed patient: %w", err)
		}
		return nil
	})
}
