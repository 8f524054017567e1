package parser

import "git.lost.host/meutraa/vsrg/internal/game"

type Parser interface {
	Parse(file string) ([]*game.Chart, error)
}
