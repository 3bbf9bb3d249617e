package sentiment

// valence lexicon, AFINN-style scores in [-5, 5]. Trimmed to terms that show
// up in screen/media discussions plus the general-purpose core.
var lexicon = map[string]float64{
	// strong positive
	"masterpiece": 5, "phenomenal": 5, "outstanding": 5, "breathtaking": 5,
	"superb": 5, "magnificent": 5, "flawless": 5,
	"amazing": 4, "awesome": 4, "brilliant": 4, "excellent": 4, "fantastic": 4,
	"incredible": 4, "wonderful": 4, "stunning": 4, "riveting": 4,
	"gripping": 4, "captivating": 4, "mesmerizing": 4, "perfect": 4,
	"great": 3, "love": 3, "loved": 3, "beautiful": 3, "best": 3,
	"favorite": 3, "hilarious": 3, "rewatch": 3, "binged": 3, "hooked": 3,
	"compelling": 3, "powerful": 3, "impressive": 3, "refreshing": 3,
	"good": 2, "like": 2, "liked": 2, "enjoy": 2, "enjoyed": 2, "enjoyable": 2,
	"fun": 2, "solid": 2, "worth": 2, "recommend": 2, "recommended": 2,
	"entertaining": 2, "charming": 2, "clever": 2, "funny": 2, "strong": 2,
	"nice": 1, "decent": 1, "fine": 1, "interesting": 1, "watchable": 1,
	"cool": 1, "okay": 1,

	// strong negative
	"unwatchable": -5, "atrocious": -5, "abysmal": -5, "garbage": -4,
	"horrible": -4, "terrible": -4, "awful": -4, "dreadful": -4, "trash": -4,
	"worst": -4, "hate": -4, "hated": -4, "insufferable": -4,
	"bad": -3, "boring": -3, "disappointing": -3, "disappointment": -3,
	"painful": -3, "mess": -3, "ruined": -3, "wasted": -3, "cringe": -3,
	"pathetic": -3, "lame": -3, "annoying": -3, "stupid": -3,
	"dull": -2, "mediocre": -2, "weak": -2, "slow": -2, "predictable": -2,
	"forgettable": -2, "overrated": -2, "bland": -2, "shallow": -2,
	"confusing": -2, "tedious": -2, "skip": -2, "disliked": -2,
	"meh": -1, "average": -1, "flat": -1, "uneven": -1, "cheesy": -1,
}

// negators flip the valence of the following lexicon token
var negators = map[string]bool{
	"not": true, "no": true, "never": true, "without": true,
	"dont": true, "don't": true, "cant": true, "can't": true,
	"isnt": true, "isn't": true, "wasnt": true, "wasn't": true,
	"hardly": true, "barely": true,
}

// stopwords excluded from trending-topic counting
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "this": true,
	"with": true, "was": true, "are": true, "but": true, "have": true,
	"had": true, "has": true, "you": true, "not": true, "all": true,
	"can": true, "her": true, "his": true, "she": true,
	"him": true, "its": true, "it's": true, "they": true,
	"them": true, "then": true, "than": true, "there": true, "their": true,
	"what": true, "when": true, "where": true, "which": true, "while": true,
	"who": true, "why": true, "will": true, "would": true, "could": true,
	"should": true, "just": true, "from": true, "were": true, "been": true,
	"being": true, "into": true, "about": true, "after": true, "before": true,
	"more": true, "most": true, "much": true, "very": true, "really": true,
	"some": true, "such": true, "only": true, "also": true, "because": true,
	"over": true, "out": true, "how": true, "any": true, "get": true,
	"got": true, "one": true, "two": true, "even": true, "still": true,
	"too": true, "did": true, "does": true, "doing": true, "don": true,
	"movie": true, "film": true, "show": true, "series": true, "season": true,
	"episode": true, "watch": true, "watched": true, "watching": true,
	"think": true, "thought": true, "people": true, "way": true, "time": true,
	"going": true, "make": true, "made": true, "something": true, "thing": true,
}
