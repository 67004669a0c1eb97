package zxid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZXID(t *testing.T) {
	tests := []struct {
		name     string
		zxid     ZXID
		epoch    int32
		counter  int32
		rendered string
	}{
		{
			name:     "zero",
			zxid:     New(0, 0),
			epoch:    0,
			counter:  0,
			rendered: "0.0",
		},
		{
			name:     "first proposal of a new epoch",
			zxid:     New(5, 1),
			epoch:    5,
			counter:  1,
			rendered: "5.1",
		},
		{
			name:     "counter at the 32-bit ceiling",
			zxid:     New(2, 0x7FFFFFFF),
			epoch:    2,
			counter:  0x7FFFFFFF,
			rendered: "2.2147483647",
		},
		{
			name:     "raw stat value",
			zxid:     ZXID(0x500000007),
			epoch:    5,
			counter:  7,
			rendered: "5.7",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.epoch, test.zxid.Epoch())
			assert.Equal(t, test.counter, test.zxid.Counter())
			assert.Equal(t, test.rendered, test.zxid.String())
		})
	}
}
