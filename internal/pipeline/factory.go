package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/fintk-dev/fintk/internal/config"
	"github.com/fintk-dev/fintk/internal/model"
)

// Factory maps an account to the concrete pipeline pair able to integrate
// its export files. Unrecognized institutions get no-op pipelines.
type Factory struct {
	cfg *config.Configuration
	log zerolog.Logger
}

func NewFactory(cfg *config.Configuration, log zerolog.Logger) *Factory {
	return &Factory{cfg: cfg, log: log}
}

func (f *Factory) NewTransactionPipeline(account model.Account) TransactionPipeline {
	p := &txPipeline{account: account, cfg: f.cfg, log: f.log}
	switch account.Company {
	case model.CompanyBNP:
		p.decode, p.defaults = decodeBNPTransactions, bnpDefaultType
	case model.CompanyBoursorama:
		p.decode, p.defaults = decodeBoursoramaTransactions, boursoramaDefaultType
	case model.CompanyCaisseEpargne:
		p.decode, p.defaults = decodeCaisseEpargneTransactions, caisseEpargneDefaultType
	case model.CompanyFortuneo:
		p.decode = decodeFortuneoTransactions
	case model.CompanyOctober:
		p.decode, p.defaults = decodeOctoberTransactions, octoberDefaultType
	case model.CompanyRevolut:
		// Commodities pockets (gold, silver) are intentionally never
		// integrated.
		if account.Type == model.RevolutTypeCommodities {
			return noopTransactionPipeline{}
		}
		p.decode = decodeRevolutTransactions
	default:
		return noopTransactionPipeline{}
	}
	return p
}

func (f *Factory) NewBalancePipeline(account model.Account) BalancePipeline {
	p := &balancePipeline{account: account, cfg: f.cfg, log: f.log}
	switch account.Company {
	case model.CompanyBNP:
		p.decode = decodeBNPBalances
	case model.CompanyBoursorama:
		p.decode = decodeBoursoramaBalances
	case model.CompanyRevolut:
		if account.Type == model.RevolutTypeCommodities {
			return noopBalancePipeline{}
		}
		p.decode = decodeRevolutBalances
	default:
		// Fortuneo, Caisse d'Epargne and October exports carry no
		// balance snapshot.
		return noopBalancePipeline{}
	}
	return p
}

func (f *Factory) NewExchangeRatePipeline() *ExchangeRatePipeline {
	return &ExchangeRatePipeline{cfg: f.cfg, log: f.log}
}

func (f *Factory) NewConvertBalancePipeline(account model.Account) *ConvertBalancePipeline {
	return &ConvertBalancePipeline{account: account, cfg: f.cfg, log: f.log}
}
