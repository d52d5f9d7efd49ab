package testutil

import (
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/udisondev/itemcode/internal/catalog"
	"github.com/udisondev/itemcode/internal/model"
)

// Modded part paths. None of them are in the test catalog.
const (
	ModdedBarrel  = "GD_Modded_Guns.Barrel.SG_Barrel_Laser"
	ModdedGrip    = "GD_Modded_Guns.Grip.SG_Grip_Golden"
	ModdedBattery = "GD_Modded_Shields.Battery.Battery_Infinite"
)

var loadCatalog = sync.OnceValues(func() (*catalog.Catalog, error) {
	_, file, _, _ := runtime.Caller(0)
	return catalog.Load(filepath.Join(filepath.Dir(file), "..", "catalog", "testdata", "parts.txt"))
})

// Catalog возвращает vanilla каталог из catalog/testdata (загружается один раз).
func Catalog(tb testing.TB) *catalog.Catalog {
	tb.Helper()

	c, err := loadCatalog()
	if err != nil {
		tb.Fatalf("loading test catalog: %v", err)
	}
	return c
}

// Part returns a catalog part, failing the test if it is missing.
func Part(tb testing.TB, path string) model.Object {
	tb.Helper()

	obj, err := Catalog(tb).Resolve(path)
	if err != nil {
		tb.Fatalf("test catalog: %v", err)
	}
	return obj
}

// ModdedPart returns an object that exists in the host but not in the game's
// native tables.
func ModdedPart(path string) model.Object {
	return moddedPart(path)
}

type moddedPart string

func (p moddedPart) PathName() string { return string(p) }

// VanillaWeapon — Jakobs shotgun, все части из каталога.
func VanillaWeapon(tb testing.TB) *model.Definition {
	tb.Helper()

	d := model.NewDefinition(model.KindWeapon)
	d.SetField("WeaponTypeDefinition", model.Ref(Part(tb, "GD_Weap_Shotgun.A_Weapons.WT_Jakobs_SG")))
	d.SetField("BalanceDefinition", model.Ref(Part(tb, "GD_Weap_Shotgun.A_Weapons.SG_Jakobs_3_Rare")))
	d.SetField("ManufacturerDefinition", model.Ref(Part(tb, "GD_Manufacturers.Manufacturers.Jakobs")))
	d.SetField("ManufacturerGradeIndex", model.Int(33))
	d.SetField("BodyPartDefinition", model.Ref(Part(tb, "GD_Weap_Shotgun.Body.SG_Body_Jakobs")))
	d.SetField("GripPartDefinition", model.Ref(Part(tb, "GD_Weap_Shotgun.Grip.SG_Grip_Bandit")))
	d.SetField("BarrelPartDefinition", model.Ref(Part(tb, "GD_Weap_Shotgun.Barrel.SG_Barrel_Jakobs")))
	d.SetField("ElementalPartDefinition", model.Ref(Part(tb, "GD_Weap_Shotgun.Elemental.SG_Elemental_Fire")))
	d.SetField("Accessory1PartDefinition", model.Ref(Part(tb, "GD_Weap_Shotgun.Accessory.SG_Accessory_2")))
	d.SetField("GameStage", model.Int(35))
	return d
}

// VanillaShield — стандартный щит Dahl.
func VanillaShield(tb testing.TB) *model.Definition {
	tb.Helper()

	d := model.NewDefinition(model.KindItem)
	d.SetField("ItemDefinition", model.Ref(Part(tb, "GD_Shields.A_Item.Shield_Standard")))
	d.SetField("ManufacturerDefinition", model.Ref(Part(tb, "GD_Manufacturers.Manufacturers.Dahl")))
	d.SetField("ManufacturerGradeIndex", model.Int(12))
	d.SetField("AlphaItemPartDefinition", model.Ref(Part(tb, "GD_Shields.Battery.Battery1_Shield_Dahl")))
	d.SetField("BetaItemPartDefinition", model.Ref(Part(tb, "GD_Shields.Accessory.Accessory1_Shield_Dahl")))
	d.SetField("GameStage", model.Int(12))
	return d
}
