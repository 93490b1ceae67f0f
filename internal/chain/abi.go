package chain

const certificateABI = `[
  {"type":"function","name":"mintCertificate","stateMutability":"nonpayable",
   "inputs":[{"name":"student","type":"address"},{"name":"ipfsHash","type":"string"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"verifyCertificate","stateMutability":"view",
   "inputs":[{"name":"tokenId","type":"uint256"}],
   "outputs":[{"name":"isValid","type":"bool"},{"name":"student","type":"address"},{"name":"issueDate","type":"uint256"},{"name":"ipfsHash","type":"string"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"owner","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"getCertificateOwner","stateMutability":"view",
   "inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"owner","type":"address"}]},
  {"type":"event","name":"CertificateMinted","anonymous":false,
   "inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"student","type":"address","indexed":true},{"name":"ipfsHash","type":"string","indexed":false},{"name":"issueDate","type":"uint256","indexed":false}]}
]`

const (
	methodMint             = "mintCertificate"
	methodVerify           = "verifyCertificate"
	methodTotalSupply      = "totalSupply"
	methodOwner            = "owner"
	methodTokenHolder      = "getCertificateOwner"
	eventCertificateMinted = "CertificateMinted"
)
