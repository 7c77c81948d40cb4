package dex

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapLogger/internal/model"
)

func TestSwapDecoderDecode(t *testing.T) {
	poolABI, err := PoolABI()
	require.NoError(t, err)

	decoder, err := NewSwapDecoder()
	require.NoError(t, err)

	pool := common.HexToAddress("0x5777d92f208679db4b9778590fa3cab3ac9e2168")
	sender := common.HexToAddress("0x2222222222222222222222222222222222222222")
	recipient := common.HexToAddress("0x3333333333333333333333333333333333333333")

	minus550 := new(big.Int).Mul(big.NewInt(-550), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	data, err := poolABI.Events["Swap"].Inputs.NonIndexed().Pack(
		minus550,
		big.NewInt(14180469296),
		big.NewInt(123456789),
		big.NewInt(987654321),
		big.NewInt(-15),
	)
	require.NoError(t, err)

	logRecord := buildLogRecord(pool, poolABI.Events["Swap"].ID, data, []common.Hash{
		topicFromAddress(sender),
		topicFromAddress(recipient),
	})

	event := decoder.Decode(logRecord)
	require.NoError(t, event.Err)
	assert.Equal(t, "0xdef", event.TxHash)
	assert.Equal(t, uint64(1), event.LogIndex)
	assert.Equal(t, model.Params{
		{Name: "sender", Value: sender.Hex()},
		{Name: "recipient", Value: recipient.Hex()},
		{Name: "amount0", Value: "ffffffffffffffffffffffffffffffffffffffffffffffe22f377a065f280000"},
		{Name: "amount1", Value: "34d38ca30"},
		{Name: "sqrtPriceX96", Value: "123456789"},
		{Name: "liquidity", Value: "987654321"},
		{Name: "tick", Value: "-15"},
	}, event.Params)
}

func TestSwapDecoderMalformed(t *testing.T) {
	poolABI, err := PoolABI()
	require.NoError(t, err)
	decoder, err := NewSwapDecoder()
	require.NoError(t, err)

	pool := common.HexToAddress("0x1111111111111111111111111111111111111111")
	sender := topicFromAddress(common.HexToAddress("0x2222222222222222222222222222222222222222"))
	swapID := poolABI.Events["Swap"].ID

	tests := []struct {
		name string
		log  model.LogRecord
	}{
		{name: "no topics", log: model.LogRecord{TxHash: "0x01", Data: "0x"}},
		{name: "other event", log: buildLogRecord(pool, common.HexToHash("0x01"), nil, []common.Hash{sender, sender})},
		{name: "missing indexed topic", log: buildLogRecord(pool, swapID, nil, []common.Hash{sender})},
		{name: "short data", log: buildLogRecord(pool, swapID, []byte{0x01, 0x02}, []common.Hash{sender, sender})},
		{name: "bad hex data", log: func() model.LogRecord {
			log := buildLogRecord(pool, swapID, nil, []common.Hash{sender, sender})
			log.Data = "0xzz"
			return log
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := decoder.Decode(tt.log)
			assert.Error(t, event.Err)
			assert.Empty(t, event.Params)
			assert.Equal(t, tt.log.TxHash, event.TxHash)
		})
	}
}

func TestSwapDecoderCanDecode(t *testing.T) {
	decoder, err := NewSwapDecoder()
	require.NoError(t, err)

	topic := decoder.Topic().Hex()
	assert.Equal(t, "0xc42079f94a6350d7e6235f29174924f928cc2ac818eb64fed8004e115fbcca67", topic)
	assert.True(t, decoder.CanDecode(topic))
	assert.False(t, decoder.CanDecode(""))
	assert.False(t, decoder.CanDecode("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"))
}

type fakeCaller struct {
	responses map[common.Address]map[string][]byte
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, errors.New("bad call")
	}
	byMethod, ok := f.responses[*msg.To]
	if !ok {
		return nil, errors.New("no contract")
	}
	resp, ok := byMethod[hexutil.Encode(msg.Data[:4])]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return resp, nil
}

func TestFetchPoolTokens(t *testing.T) {
	poolABI, err := PoolABI()
	require.NoError(t, err)
	stringABI, err := erc20ABIStringInstance()
	require.NoError(t, err)
	bytes32ABI, err := erc20ABIBytes32Instance()
	require.NoError(t, err)

	pool := common.HexToAddress("0x5777d92f208679db4b9778590fa3cab3ac9e2168")
	dai := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	mkr := common.HexToAddress("0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2")

	pack := func(out []byte, err error) []byte {
		require.NoError(t, err)
		return out
	}
	selector := func(method string) string {
		return hexutil.Encode(stringABI.Methods[method].ID)
	}

	var mkrSymbol, mkrName [32]byte
	copy(mkrSymbol[:], "MKR")
	copy(mkrName[:], "Maker")

	caller := &fakeCaller{responses: map[common.Address]map[string][]byte{
		pool: {
			hexutil.Encode(poolABI.Methods["token0"].ID): pack(poolABI.Methods["token0"].Outputs.Pack(dai)),
			hexutil.Encode(poolABI.Methods["token1"].ID): pack(poolABI.Methods["token1"].Outputs.Pack(mkr)),
		},
		dai: {
			selector("decimals"): pack(stringABI.Methods["decimals"].Outputs.Pack(uint8(18))),
			selector("symbol"):   pack(stringABI.Methods["symbol"].Outputs.Pack("DAI")),
			selector("name"):     pack(stringABI.Methods["name"].Outputs.Pack("Dai Stablecoin")),
		},
		mkr: {
			selector("decimals"): pack(stringABI.Methods["decimals"].Outputs.Pack(uint8(18))),
			selector("symbol"):   pack(bytes32ABI.Methods["symbol"].Outputs.Pack(mkrSymbol)),
			selector("name"):     pack(bytes32ABI.Methods["name"].Outputs.Pack(mkrName)),
		},
	}}

	token0, token1, err := FetchPoolTokens(context.Background(), caller, pool, nil)
	require.NoError(t, err)

	assert.Equal(t, model.TokenMeta{Address: dai.Hex(), Decimals: 18, Symbol: "DAI", Name: "Dai Stablecoin"}, token0)
	assert.Equal(t, model.TokenMeta{Address: mkr.Hex(), Decimals: 18, Symbol: "MKR", Name: "Maker"}, token1)
}

func TestFetchPoolTokensErrors(t *testing.T) {
	_, _, err := FetchPoolTokens(context.Background(), nil, common.Address{}, nil)
	assert.Error(t, err)

	caller := &fakeCaller{responses: map[common.Address]map[string][]byte{}}
	_, _, err = FetchPoolTokens(context.Background(), caller, common.HexToAddress("0x01"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call token0")
}

func TestFetchTokenMetaRequiresDecimals(t *testing.T) {
	token := common.HexToAddress("0x04")
	caller := &fakeCaller{responses: map[common.Address]map[string][]byte{token: {}}}

	meta, err := FetchTokenMeta(context.Background(), caller, token, nil)
	require.Error(t, err)
	assert.Equal(t, token.Hex(), meta.Address)
}

func TestInt24FromBig(t *testing.T) {
	v, err := int24FromBig(big.NewInt(-8388608))
	require.NoError(t, err)
	assert.Equal(t, int32(-8388608), v)

	_, err = int24FromBig(big.NewInt(8388608))
	assert.Error(t, err)
}

func buildLogRecord(pool common.Address, topic0 common.Hash, data []byte, indexed []common.Hash) model.LogRecord {
	topics := make([]string, 0, len(indexed)+1)
	topics = append(topics, topic0.Hex())
	for _, topic := range indexed {
		topics = append(topics, topic.Hex())
	}

	return model.LogRecord{
		ChainID:     1,
		BlockNumber: 12345,
		BlockHash:   "0xabc",
		TxHash:      "0xdef",
		LogIndex:    1,
		Address:     pool.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(data),
		Timestamp:   1700000000,
	}
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}
