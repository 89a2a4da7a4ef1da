// Package serverconfig models the dedicated server's ServerSettings.ini
// section as a typed schema over iniconf. Fields are grouped by the
// category tabs the game's own settings screen uses; every group is
// flattened so the wire keys are flat under [ServerSettings].
package serverconfig

import (
	"time"

	"exile-core/iniconf"
)

// ServerSettings is the full [ServerSettings] schema.
type ServerSettings struct {
	General     GeneralSettings     `ini:",flatten"`
	Progression ProgressionSettings `ini:",flatten"`
	Daylight    DaylightSettings    `ini:",flatten"`
	Survival    SurvivalSettings    `ini:",flatten"`
	Combat      CombatSettings      `ini:",flatten"`
	Harvesting  HarvestingSettings  `ini:",flatten"`
	Crafting    CraftingSettings    `ini:",flatten"`
	Building    BuildingSettings    `ini:",flatten"`
	Chat        ChatSettings        `ini:",flatten"`
	Follower    FollowerSettings    `ini:",flatten"`
	Maelstrom   MaelstromSettings   `ini:",flatten"`
}

func (ServerSettings) IniSection() string { return "ServerSettings" }

type GeneralSettings struct {
	AdminPassword             string
	ServerPassword            string
	ServerMessageOfTheDay     string
	MaxNudity                 Nudity
	ServerCommunity           Community
	PVPEnabled                bool `ini:"PVPEnabled"`
	PVPBlitzServer            bool `ini:"PVPBlitzServer"`
	IsBattlEyeEnabled         bool
	CanBeDamaged              bool
	EnableSandStorm           bool
	EnableClanMarkers         bool
	MaxAllowedPing            uint32
	MaxClanSize               uint32
	NoOwnership               bool
	ContainersIgnoreOwnership bool
}

type ProgressionSettings struct {
	PlayerXPRateMultiplier    iniconf.Multiplier
	PlayerXPKillMultiplier    iniconf.Multiplier
	PlayerXPHarvestMultiplier iniconf.Multiplier
	PlayerXPCraftMultiplier   iniconf.Multiplier
	PlayerXPTimeMultiplier    iniconf.Multiplier
}

type DaylightSettings struct {
	DayCycleSpeedScale   iniconf.Multiplier
	DayTimeSpeedScale    iniconf.Multiplier
	NightTimeSpeedScale  iniconf.Multiplier
	DawnDuskSpeedScale   iniconf.Multiplier
	UseClientCatchUpTime bool
	ClientCatchUpTime    iniconf.Minutes
}

type SurvivalSettings struct {
	PlayerIdleThirstMultiplier    iniconf.Multiplier
	PlayerActiveThirstMultiplier  iniconf.Multiplier
	PlayerOfflineThirstMultiplier iniconf.Multiplier
	PlayerIdleHungerMultiplier    iniconf.Multiplier
	PlayerActiveHungerMultiplier  iniconf.Multiplier
	PlayerOfflineHungerMultiplier iniconf.Multiplier
	PlayerHealthRegenSpeedScale   iniconf.Multiplier
	PlayerStaminaRegenSpeedScale  iniconf.Multiplier
	StaminaCostMultiplier         iniconf.Multiplier
	IdleThirstMultiplier          iniconf.Multiplier
	ActiveThirstMultiplier        iniconf.Multiplier
	IdleHungerMultiplier          iniconf.Multiplier
	ActiveHungerMultiplier        iniconf.Multiplier
	DropEquipmentOnDeath          bool
	EverybodyCanLootCorpse        bool
	DropShortcutbarOnDeath        bool
	CorruptionRemovalMultiplier   iniconf.Multiplier
	SandstormDurability           iniconf.Multiplier
}

type CombatSettings struct {
	DurabilityMultiplier         iniconf.Multiplier
	ShieldDurabilityMultiplier   iniconf.Multiplier
	PlayerDamageMultiplier       iniconf.Multiplier
	PlayerDamageTakenMultiplier  iniconf.Multiplier
	NPCDamageMultiplier          iniconf.Multiplier `ini:"NPCDamageMultiplier"`
	NPCDamageTakenMultiplier     iniconf.Multiplier `ini:"NPCDamageTakenMultiplier"`
	NPCRespawnMultiplier         iniconf.Multiplier `ini:"NPCRespawnMultiplier"`
	UnconsciousTimeSeconds       iniconf.Seconds
	ConciousnessDamageMultiplier iniconf.Multiplier
	ProjectileDamageMultiplier   iniconf.Multiplier
	RestrictPVPTime              bool               `ini:"RestrictPVPTime"`
	PVPWindow                    iniconf.DailyHours `ini:"PVP"`
}

type HarvestingSettings struct {
	HarvestAmountMultiplier        iniconf.Multiplier
	ItemSpoilRateScale             iniconf.Multiplier
	ResourceRespawnSpeedMultiplier iniconf.Multiplier
	ClaimPreventsResourceRespawn   bool
}

type CraftingSettings struct {
	ItemConvertionMultiplier        iniconf.Multiplier
	CraftingCostMultiplier          iniconf.Multiplier
	CraftingTimeMultiplier          iniconf.Multiplier
	ThrallCraftingTimeMultiplier    iniconf.Multiplier
	FuelBurnTimeMultiplier          iniconf.Multiplier
	AnimalPenCraftingTimeMultiplier iniconf.Multiplier
}

type BuildingSettings struct {
	CanDamagePlayerOwnedStructures bool
	BuildingDamageMultiplier       iniconf.Multiplier
	StructureDamageTakenMultiplier iniconf.Multiplier
	StructureHealthMultiplier      iniconf.Multiplier
	BuildingRadialDestruction      bool
	DisableBuildingAbandonment     bool
	BuildingDecayTimeMultiplier    iniconf.Multiplier
	LandClaimRadiusMultiplier      iniconf.Multiplier
	ThrallDecayDisabled            bool
	ThrallDecayTime                iniconf.Seconds
	RestrictPVPBuildingDamageTime  bool               `ini:"RestrictPVPBuildingDamageTime"`
	RaidWindow                     iniconf.DailyHours `ini:"PVPBuildingDamage"`
}

type ChatSettings struct {
	ChatLocalRadius         float64
	ChatMaxMessageLength    uint32
	ChatHasGlobal           bool
	ChatFloodControlEnabled bool
	VoiceChatEnabled        bool
	ChatFilterMode          ChatFilter
}

type FollowerSettings struct {
	UseMinionPopulationLimit    bool
	MinionPopulationBaseValue   uint32
	MinionPopulationPerPlayer   uint32
	MinionOverpopulationCleanup iniconf.Minutes
	MinionDamageMultiplier      iniconf.Multiplier
	MinionDamageTakenMultiplier iniconf.Multiplier
	FeedThralls                 bool
	ThrallWakeupTimeSeconds     iniconf.Seconds
	AnimalPenFeedingEnabled     bool
	FollowerStayTimeout         iniconf.Minutes
}

type MaelstromSettings struct {
	StormEnabled                    bool
	StormTime                       iniconf.WeeklyHours `ini:"StormTime"`
	StormMinimumOnlinePlayers       uint32
	StormBuildingDamageEnabled      bool
	StormMonstersEnabled            bool
	ElderThingsEnabled              bool
	SiegeElderThingsEnabled         bool
	StormCooldown                   iniconf.Minutes
	StormDuration                   iniconf.Minutes
	StormMonsterSpawnRateMultiplier iniconf.Multiplier
	AltarModifierActiveTime         iniconf.Minutes
	SurgeCostMultiplier             iniconf.Multiplier
}

// DefaultServerSettings mirrors a fresh dedicated-server install: all
// rate multipliers at 1.0, official-style toggles, empty passwords.
func DefaultServerSettings() ServerSettings {
	s := ServerSettings{
		General: GeneralSettings{
			MaxNudity:         NudityPartial,
			ServerCommunity:   CommunityNone,
			IsBattlEyeEnabled: true,
			CanBeDamaged:      true,
			EnableSandStorm:   true,
			EnableClanMarkers: true,
			MaxClanSize:       60,
		},
		Daylight: DaylightSettings{
			UseClientCatchUpTime: true,
			ClientCatchUpTime:    iniconf.Minutes(10 * time.Minute),
		},
		Survival: SurvivalSettings{
			DropEquipmentOnDeath: true,
		},
		Combat: CombatSettings{
			UnconsciousTimeSeconds: iniconf.Seconds(10 * time.Minute),
		},
		Building: BuildingSettings{
			ThrallDecayTime: iniconf.Seconds(14 * 24 * time.Hour),
		},
		Chat: ChatSettings{
			ChatLocalRadius:         7000,
			ChatMaxMessageLength:    512,
			ChatHasGlobal:           true,
			ChatFloodControlEnabled: true,
			VoiceChatEnabled:        true,
			ChatFilterMode:          ChatFilterBasic,
		},
		Follower: FollowerSettings{
			UseMinionPopulationLimit:    true,
			MinionPopulationBaseValue:   50,
			MinionPopulationPerPlayer:   5,
			MinionOverpopulationCleanup: iniconf.Minutes(time.Hour),
			FeedThralls:                 false,
			ThrallWakeupTimeSeconds:     iniconf.Seconds(30 * time.Minute),
		},
		Maelstrom: MaelstromSettings{
			StormEnabled:               true,
			StormMinimumOnlinePlayers:  1,
			StormBuildingDamageEnabled: false,
			StormMonstersEnabled:       true,
			StormCooldown:              iniconf.Minutes(90 * time.Minute),
			StormDuration:              iniconf.Minutes(15 * time.Minute),
		},
	}

	for _, m := range []*iniconf.Multiplier{
		&s.Progression.PlayerXPRateMultiplier,
		&s.Progression.PlayerXPKillMultiplier,
		&s.Progression.PlayerXPHarvestMultiplier,
		&s.Progression.PlayerXPCraftMultiplier,
		&s.Progression.PlayerXPTimeMultiplier,
		&s.Daylight.DayCycleSpeedScale,
		&s.Daylight.DayTimeSpeedScale,
		&s.Daylight.NightTimeSpeedScale,
		&s.Daylight.DawnDuskSpeedScale,
		&s.Survival.PlayerIdleThirstMultiplier,
		&s.Survival.PlayerActiveThirstMultiplier,
		&s.Survival.PlayerOfflineThirstMultiplier,
		&s.Survival.PlayerIdleHungerMultiplier,
		&s.Survival.PlayerActiveHungerMultiplier,
		&s.Survival.PlayerOfflineHungerMultiplier,
		&s.Survival.PlayerHealthRegenSpeedScale,
		&s.Survival.PlayerStaminaRegenSpeedScale,
		&s.Survival.StaminaCostMultiplier,
		&s.Survival.IdleThirstMultiplier,
		&s.Survival.ActiveThirstMultiplier,
		&s.Survival.IdleHungerMultiplier,
		&s.Survival.ActiveHungerMultiplier,
		&s.Survival.CorruptionRemovalMultiplier,
		&s.Survival.SandstormDurability,
		&s.Combat.DurabilityMultiplier,
		&s.Combat.ShieldDurabilityMultiplier,
		&s.Combat.PlayerDamageMultiplier,
		&s.Combat.PlayerDamageTakenMultiplier,
		&s.Combat.NPCDamageMultiplier,
		&s.Combat.NPCDamageTakenMultiplier,
		&s.Combat.NPCRespawnMultiplier,
		&s.Combat.ConciousnessDamageMultiplier,
		&s.Combat.ProjectileDamageMultiplier,
		&s.Harvesting.HarvestAmountMultiplier,
		&s.Harvesting.ItemSpoilRateScale,
		&s.Harvesting.ResourceRespawnSpeedMultiplier,
		&s.Crafting.ItemConvertionMultiplier,
		&s.Crafting.CraftingCostMultiplier,
		&s.Crafting.CraftingTimeMultiplier,
		&s.Crafting.ThrallCraftingTimeMultiplier,
		&s.Crafting.FuelBurnTimeMultiplier,
		&s.Crafting.AnimalPenCraftingTimeMultiplier,
		&s.Building.BuildingDamageMultiplier,
		&s.Building.StructureDamageTakenMultiplier,
		&s.Building.StructureHealthMultiplier,
		&s.Building.BuildingDecayTimeMultiplier,
		&s.Building.LandClaimRadiusMultiplier,
		&s.Follower.MinionDamageMultiplier,
		&s.Follower.MinionDamageTakenMultiplier,
		&s.Maelstrom.StormMonsterSpawnRateMultiplier,
		&s.Maelstrom.SurgeCostMultiplier,
	} {
		*m = 1
	}
	return s
}

// LoadSettings reads [ServerSettings] from the INI file at path into a
// default-initialized schema, so absent keys report their defaults.
func LoadSettings(path string) (ServerSettings, error) {
	s := DefaultServerSettings()
	f, err := iniconf.LoadFile(path)
	if err != nil {
		return s, err
	}
	if err := iniconf.LoadSection(f, &s); err != nil {
		return s, err
	}
	return s, nil
}

// SaveSettings writes the schema back to the INI file at path,
// preserving keys the schema does not know.
func SaveSettings(path string, s *ServerSettings) error {
	f, err := iniconf.LoadFile(path)
	if err != nil {
		f = iniconf.NewFile()
	}
	if err := iniconf.SaveSection(f, s); err != nil {
		return err
	}
	return f.SaveTo(path)
}
