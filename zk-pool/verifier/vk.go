package verifier

// Verifying key of the pool circuit, 10 public inputs. Points use the
// uncompressed big-endian layout: G1 as x || y, G2 as x.c1 || x.c0 || y.c1 || y.c0.
var defaultVKHex = struct {
	alpha, beta, gamma, delta string
	ic                        []string
}{
	alpha: "2d4d9aa7e302d9df41749d5507949d05dbea33fbb16c643b22f599a2be6df2e2" +
		"14bedd503c37ceb061d8ec60209fe345ce89830a19230301f076caff004d1926",
	beta: "0967032fcbf776d1afc985f88877f182d38480a653f2decaa9794cbc3bf3060c" +
		"0e187847ad4c798374d0d6732bf501847dd68bc0e071241e0213bc7fc13db7ab" +
		"304cfbd1e08a704a99f5e847d93f8c3caafddec46b7a0d379da69a4d112346a7" +
		"1739c1b1a457a8c7313123d24d2f9192f896b7c63eea05a9d57f06547ad0cec8",
	gamma: "198e9393920d483a7260bfb731fb5d25f1aa493335a9e71297e485b7aef312c2" +
		"1800deef121f1e76426a00665e5c4479674322d4f75edadd46debd5cd992f6ed" +
		"090689d0585ff075ec9e99ad690c3395bc4b313370b38ef355acdadcd122975b" +
		"12c85ea5db8c6deb4aab71808dcb408fe3d1e7690c43d37b4ce6cc0166fa7daa",
	delta: "0e9ecd71c4d2bc09b299ee0e56307f67325b4ed75ee625bfc60ea71ee6d52dbd" +
		"13890d6295a0dd4c403ebc9b06d6bc9bd779b13249adc6fee7cef37e0f16f595" +
		"156281aa48449b7a4ada5e2da65b1fe1b27fe476cb1a1ef7e56405ac4c3527ef" +
		"120685427321665236fdde3b96ca266a48402d8e4bfbe081187f5b41bf5854a1",
	ic: []string{
		"1ca0d3b99b5a36075f3399f07b6142daf00e2c2b7c46e2729e8672271e3102e8" +
			"0e1b6e7502258d6a83fc46e52cdb2536445fa4fb52427211fd9ec5555b2a6b57",
		"08069ceb79b928c66d7088ab710cc3465253c5b9c9b629bdf77051dcad7d1612" +
			"116e68921173264b34649c7a45b051b97c4a60c27ec658139f5aa8782efb386e",
		"2ec9b13fe4c77e2b763f0b0a38b6e77637c62aaac564d0084cabde5330b4e77c" +
			"28fd8a5fa176f9412c0f26bfc0b89332d5bbca870e510db19ddd3bdc8bc044de",
		"07511c744feda4fe21659e3a7746c9a4303cd817f3f77384126037bc76155ee3" +
			"2365259f1de2266bede57da4badaad8ad2c1cb8f023ae5d73f864e149c6928fe",
		"0d442e2ca2264f1df8188b747ded16af2bc06f0be202b73df801928ce462c677" +
			"1c3162b21c931df668e5b552e861abb64c78f278ae857f000314756df1206901",
		"09ff09e42eea357cb5bda8185b2fee63a6a659376c2c804444a61a2f706899c7" +
			"1a9e09b505bdd909417becbc6c64a6d4b9d76cbb8639150d26009bf779da368d",
		"2c78ef5fcc4b104a94b888798c4e6a1d66c1a6d267331990dc3165cef44bfdf1" +
			"1b80344a3893ed4377bad6281f351c8df8bc5bc0b0ad3c6c9ec8d00b6dca191e",
		"084ac93ee75b266c91334c2554a0cab6adcc7c7078b28dac496d31cf36d3b2e3" +
			"16f54f3038585db9eb78028cc5a13b6d85d70f6ee46b1328c4a87ca4a2d6514a",
		"06bf83d30dd960fa7af31bc0ead8524012ffc8efb74fd9db974738ff6925e5dc" +
			"19865c46d4123718faa4d664802dbfefa927c347184ce049bb7a78084e8f0cb1",
		"1f77f38df7d92489a643ff605a8873637166cd7240e4354d27bd87741c3b6ddd" +
			"167d5934beeccf215ed04223a9bcc3fb8827ad3215f5a60255fda5949a5c9a7e",
		"00f34d11e8b6767ce2a2b3c0d508801ff97481be0e81bdc4650951a7fc5835e7" +
			"073bd45623e6d1c1fadbae1dcd6e443447a652b7d750ad5d804b9a9f4fd88791",
	},
}
