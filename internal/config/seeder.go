package config

import (
	"log"

	"gorm.io/gorm"

	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/core/domain"
	"plafondhub/internal/pkg/password"
)

// SeedMasterData seeds the closed role set, the plafond tiers, their tenor
// rates, and the bootstrap super-admin account. Idempotent: existing rows are
// left untouched.
func SeedMasterData(db *gorm.DB) error {
	if err := seedRoles(db); err != nil {
		return err
	}
	if err := seedPlafonds(db); err != nil {
		return err
	}
	if err := seedTenorRates(db); err != nil {
		return err
	}
	if err := seedSuperAdmin(db); err != nil {
		return err
	}

	log.Println("✅ Master data seeding completed")
	return nil
}

func seedRoles(db *gorm.DB) error {
	descriptions := map[domain.Role]string{
		domain.RoleSuperAdmin:    "Full platform administration",
		domain.RoleMarketing:     "Reviews incoming plafond applications",
		domain.RoleBranchManager: "Approves reviewed applications and sets limits",
		domain.RoleBackOffice:    "Processes and cancels disbursements",
		domain.RoleCustomer:      "Applies for plafonds and requests disbursements",
	}

	for _, role := range domain.AllRoles {
		row := models.Role{Name: string(role), Description: descriptions[role]}
		if err := db.Where("name = ?", row.Name).FirstOrCreate(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedPlafonds(db *gorm.DB) error {
	plafonds := []models.Plafond{
		{Name: "Bronze", Description: "Entry credit line", MaxAmount: 5_000_000, IsActive: true},
		{Name: "Silver", Description: "Standard credit line", MaxAmount: 10_000_000, IsActive: true},
		{Name: "Gold", Description: "Preferred credit line", MaxAmount: 25_000_000, IsActive: true},
		{Name: "Diamond", Description: "Premium credit line", MaxAmount: 50_000_000, IsActive: true},
	}

	for _, p := range plafonds {
		row := p
		if err := db.Where("name = ?", p.Name).FirstOrCreate(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedTenorRates(db *gorm.DB) error {
	// Annual rates per tier; longer tenors price slightly higher
	tenorRates := map[int]float64{3: 10.0, 6: 11.0, 12: 12.5}

	var plafonds []models.Plafond
	if err := db.Find(&plafonds).Error; err != nil {
		return err
	}

	for _, p := range plafonds {
		for tenor, rate := range tenorRates {
			row := models.TenorRate{
				PlafondID:    p.ID,
				TenorMonths:  tenor,
				InterestRate: rate,
				IsActive:     true,
			}
			err := db.Where("plafond_id = ? AND tenor_months = ?", p.ID, tenor).
				FirstOrCreate(&row).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func seedSuperAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := password.Hash("superadmin123")
	if err != nil {
		return err
	}

	var adminRole models.Role
	if err := db.Where("name = ?", string(domain.RoleSuperAdmin)).First(&adminRole).Error; err != nil {
		return err
	}

	admin := models.User{
		Username: "superadmin",
		Email:    "superadmin@plafondhub.id",
		FullName: "Super Administrator",
		Password: hash,
		IsActive: true,
		Roles:    []models.Role{adminRole},
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("⚠️ Seeded default super admin (superadmin / superadmin123); change the password")
	return nil
}
