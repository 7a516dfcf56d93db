package engine

import (
	"fmt"
	"slices"
)

// Victory selects how a match is decided
type Victory int

const (
	// VictoryCheckmate ends the match when the side to move has no legal
	// move: checkmate if its royal piece is threatened, stalemate otherwise.
	VictoryCheckmate Victory = iota + 1
	// VictoryCapture ends the match when a piece of a target kind is captured.
	// There is no check concept.
	VictoryCapture
)

const (
	ProfileClassic = "classic"
	ProfileRitual  = "ritual"
)

// Profile bundles board size, piece catalog, layout, promotion rules and
// victory policy. One Engine serves exactly one profile.
type Profile struct {
	Name             string
	BoardSize        int
	Catalog          map[PieceKind]Blueprint
	BackRank         []PieceKind
	Pawns            bool
	RoyalKind        PieceKind // empty when the profile has no check concept
	DefaultPromotion PieceKind
	PromotionOptions []PieceKind
	Victory          Victory
	CaptureTargets   []PieceKind
}

// Classic is the 8x8 profile with check, checkmate and stalemate
func Classic() Profile {
	return Profile{
		Name:             ProfileClassic,
		BoardSize:        8,
		Catalog:          ClassicCatalog(),
		BackRank:         []PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook},
		Pawns:            true,
		RoyalKind:        King,
		DefaultPromotion: Queen,
		PromotionOptions: []PieceKind{Queen, Rook, Bishop, Knight},
		Victory:          VictoryCheckmate,
	}
}

// Ritual is the reduced 5x5 profile won by capturing the opposing dancer
func Ritual() Profile {
	return Profile{
		Name:           ProfileRitual,
		BoardSize:      5,
		Catalog:        RitualCatalog(),
		BackRank:       []PieceKind{Sentinel, Oracle, Dancer, Oracle, Sentinel},
		Victory:        VictoryCapture,
		CaptureTargets: []PieceKind{Dancer},
	}
}

// ProfileByName resolves a built-in profile; the empty name means classic
func ProfileByName(name string) (Profile, error) {
	switch name {
	case "", ProfileClassic:
		return Classic(), nil
	case ProfileRitual:
		return Ritual(), nil
	default:
		return Profile{}, fmt.Errorf("%w: unknown profile %q", ErrInvalidProfile, name)
	}
}

// Validate checks the internal consistency of a profile
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidProfile)
	}
	if p.BoardSize < 3 {
		return fmt.Errorf("%w: board size %d too small", ErrInvalidProfile, p.BoardSize)
	}
	if len(p.BackRank) != p.BoardSize {
		return fmt.Errorf("%w: back rank has %d kinds for board size %d", ErrInvalidProfile, len(p.BackRank), p.BoardSize)
	}
	for _, kind := range p.BackRank {
		if _, ok := p.Catalog[kind]; !ok {
			return fmt.Errorf("%w: back rank kind %q missing from catalog", ErrInvalidProfile, kind)
		}
	}
	for kind, bp := range p.Catalog {
		if bp.Kind != kind {
			return fmt.Errorf("%w: catalog entry %q describes %q", ErrInvalidProfile, kind, bp.Kind)
		}
		switch bp.Family {
		case FamilySlide, FamilyStep, FamilyLeap:
			if len(bp.Directions) == 0 {
				return fmt.Errorf("%w: %q has no directions", ErrInvalidProfile, kind)
			}
		case FamilyPawn:
		default:
			return fmt.Errorf("%w: %q has unknown movement family %d", ErrInvalidProfile, kind, bp.Family)
		}
	}

	if p.Pawns {
		if bp, ok := p.Catalog[Pawn]; !ok || bp.Family != FamilyPawn {
			return fmt.Errorf("%w: pawn rank requires a pawn blueprint", ErrInvalidProfile)
		}
		if p.BoardSize < 5 {
			return fmt.Errorf("%w: pawn rank requires a board of at least 5", ErrInvalidProfile)
		}
		if !slices.Contains(p.PromotionOptions, p.DefaultPromotion) {
			return fmt.Errorf("%w: default promotion %q not in allowed set", ErrInvalidProfile, p.DefaultPromotion)
		}
		for _, kind := range p.PromotionOptions {
			if _, ok := p.Catalog[kind]; !ok {
				return fmt.Errorf("%w: promotion kind %q missing from catalog", ErrInvalidProfile, kind)
			}
		}
	}

	switch p.Victory {
	case VictoryCheckmate:
		if p.RoyalKind == "" {
			return fmt.Errorf("%w: checkmate victory requires a royal kind", ErrInvalidProfile)
		}
		royals := 0
		for _, kind := range p.BackRank {
			if kind == p.RoyalKind {
				royals++
			}
		}
		if royals != 1 {
			return fmt.Errorf("%w: back rank must hold exactly one %q", ErrInvalidProfile, p.RoyalKind)
		}
	case VictoryCapture:
		if len(p.CaptureTargets) == 0 {
			return fmt.Errorf("%w: capture victory requires target kinds", ErrInvalidProfile)
		}
	default:
		return fmt.Errorf("%w: unknown victory policy %d", ErrInvalidProfile, p.Victory)
	}
	return nil
}

func (p Profile) blueprint(kind PieceKind) (Blueprint, bool) {
	bp, ok := p.Catalog[kind]
	return bp, ok
}

func (p Profile) hasCheck() bool {
	return p.Victory == VictoryCheckmate && p.RoyalKind != ""
}

// forward is +1 for the first player and -1 for the second
func forward(players [2]string, ownerID string) int {
	if players[0] == ownerID {
		return 1
	}
	return -1
}

func (p Profile) promotionRank(players [2]string, ownerID string) int {
	if forward(players, ownerID) == 1 {
		return p.BoardSize - 1
	}
	return 0
}

func (p Profile) pawnStartRank(players [2]string, ownerID string) int {
	if forward(players, ownerID) == 1 {
		return 1
	}
	return p.BoardSize - 2
}
