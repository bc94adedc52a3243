package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/Kerhoff/wishlist/internal/models"
)

// DefaultSeed returns the roster and starter wishlists used on first boot
// when no seed file is configured.
func DefaultSeed() *models.State {
	s := models.NewState()
	s.FamilyMembers = []models.FamilyMember{
		{ID: 1, Name: "Tom", Avatar: "💎"},
		{ID: 2, Name: "Cherney", Avatar: "🍾"},
		{ID: 3, Name: "Kait", Avatar: "🗺"},
		{ID: 4, Name: "Alex", Avatar: "✈️"},
		{ID: 5, Name: "Corrie", Avatar: "🥏"},
		{ID: 6, Name: "Matt", Avatar: "🎸"},
		{ID: 7, Name: "Erin", Avatar: "🪴"},
	}
	s.Wishlists = map[int64][]models.WishlistItem{
		1: {
			{ID: 1, Item: "Coffee grinder", Link: "https://amazon.com/coffee-grinder", Notes: "For morning coffee routine"},
			{ID: 2, Item: "Book: The Seven Husbands of Evelyn Hugo", Link: "https://amazon.com/seven-husbands-book", Notes: "Paperback preferred", Purchased: true},
		},
		2: {
			{ID: 3, Item: "Essential oils set", Link: "https://amazon.com/essential-oils", Notes: "Lavender and eucalyptus preferred"},
			{ID: 4, Item: "Cozy throw blanket", Link: "https://target.com/throw-blanket", Size: "Large", Color: "Gray or beige", Notes: "For living room couch"},
		},
		3: {
			{ID: 5, Item: "Skincare gift set", Link: "https://sephora.com/skincare-set", Notes: "For sensitive skin"},
			{ID: 6, Item: "Workout leggings", Link: "https://lululemon.com/leggings", Size: "Medium", Color: "Black", Notes: "High-waisted style", Purchased: true},
		},
		4: {
			{ID: 7, Item: "Gaming headset", Link: "https://bestbuy.com/gaming-headset", Color: "Black or red", Notes: "Wireless preferred"},
			{ID: 8, Item: "Board game", Link: "https://amazon.com/board-game", Notes: "Strategy games preferred"},
		},
		5: {
			{ID: 9, Item: "Candle making kit", Link: "https://etsy.com/candle-kit", Size: "Beginner", Notes: "Includes wicks and instructions"},
			{ID: 10, Item: "Plant pot set", Link: "https://homedepot.com/plant-pots", Size: "Medium", Color: "Terracotta", Notes: "For indoor herbs"},
		},
		6: {
			{ID: 11, Item: "Tool organizer", Link: "https://lowes.com/tool-organizer", Size: "Large", Color: "Black", Notes: "For garage workbench"},
			{ID: 12, Item: "Bluetooth speaker", Link: "https://bestbuy.com/bluetooth-speaker", Size: "Portable", Notes: "Waterproof for outdoor use", Purchased: true},
		},
		7: {
			{ID: 13, Item: "Yoga mat", Link: "https://target.com/yoga-mat", Size: "Standard", Color: "Purple or teal", Notes: "Extra thick for comfort"},
			{ID: 14, Item: "Recipe book", Link: "https://amazon.com/recipe-book", Notes: "Vegetarian recipes preferred"},
		},
	}
	return s
}

// LoadSeed reads a YAML seed document shaped like the persisted state:
//
//	familyMembers:
//	  - {id: 1, name: Tom, avatar: "💎"}
//	wishlists:
//	  1:
//	    - {id: 1, item: Coffee grinder}
func LoadSeed(path string) (*models.State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed models.State
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	state := seed.Clone()
	if err := ValidateSeed(state); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}
	return state, nil
}

// ValidateSeed checks the roster and item invariants of a seed state.
func ValidateSeed(seed *models.State) error {
	if seed == nil || len(seed.FamilyMembers) == 0 {
		return fmt.Errorf("%w: seed must contain at least one family member", ErrValidation)
	}

	var problems *multierror.Error
	memberIDs := make(map[int64]bool)
	names := make(map[string]bool)
	for _, m := range seed.FamilyMembers {
		if m.ID <= 0 {
			problems = multierror.Append(problems, fmt.Errorf("family member %q has non-positive id %d", m.Name, m.ID))
		}
		if memberIDs[m.ID] {
			problems = multierror.Append(problems, fmt.Errorf("duplicate family member id %d", m.ID))
		}
		memberIDs[m.ID] = true

		name := strings.ToLower(strings.TrimSpace(m.Name))
		if name == "" {
			problems = multierror.Append(problems, fmt.Errorf("family member %d has an empty name", m.ID))
		} else if names[name] {
			problems = multierror.Append(problems, fmt.Errorf("duplicate family member name %q", m.Name))
		}
		names[name] = true
	}

	itemIDs := make(map[int64]bool)
	for _, memberID := range seed.MemberIDs() {
		if !memberIDs[memberID] {
			problems = multierror.Append(problems, fmt.Errorf("wishlist for unknown family member %d", memberID))
		}
		for _, it := range seed.Wishlists[memberID] {
			if it.ID <= 0 {
				problems = multierror.Append(problems, fmt.Errorf("item %q has non-positive id %d", it.Item, it.ID))
			}
			if itemIDs[it.ID] {
				problems = multierror.Append(problems, fmt.Errorf("duplicate item id %d", it.ID))
			}
			itemIDs[it.ID] = true
			if strings.TrimSpace(it.Item) == "" {
				problems = multierror.Append(problems, fmt.Errorf("item %d has an empty name", it.ID))
			}
		}
	}

	if err := problems.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
